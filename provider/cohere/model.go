package cohere

import (
	"sync"

	"github.com/casualjim/myna/internal/registry"
	"github.com/casualjim/myna/provider"
	"github.com/fogfish/opts"
)

var modelRegistry = registry.New[provider.Model]()

func CommandRPlus(options ...opts.Option[Provider]) provider.Model {
	return Model("command-r-plus-08-2024", options...)
}

func CommandR(options ...opts.Option[Provider]) provider.Model {
	return Model("command-r-08-2024", options...)
}

func CommandR7B(options ...opts.Option[Provider]) provider.Model {
	return Model("command-r7b-12-2024", options...)
}

func Model(name string, options ...opts.Option[Provider]) provider.Model {
	m, _ := modelRegistry.GetOrAdd(name, func() provider.Model {
		return &model{
			name:    name,
			options: options,
		}
	})
	return m
}

var _ provider.Model = (*model)(nil)

type model struct {
	name    string
	options []opts.Option[Provider]

	prov     provider.Provider
	provOnce sync.Once
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Provider() provider.Provider {
	m.provOnce.Do(func() {
		m.prov = New(m.options...)
	})
	return m.prov
}
