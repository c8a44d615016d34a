// Package models keeps the global registry of known chat models so runners
// can resolve a model by its wire name.
package models

import (
	"github.com/casualjim/myna/internal/registry"
	"github.com/casualjim/myna/provider"
)

var Global = registry.New[provider.Model]()

func Add(model provider.Model) {
	Global.Add(model.Name(), model)
}

func Get(name string) (provider.Model, bool) {
	return Global.Get(name)
}

func GetOrAdd(name string, modelF func() provider.Model) provider.Model {
	m, _ := Global.GetOrAdd(name, modelF)
	return m
}

func Del(name string) {
	Global.Del(name)
}
