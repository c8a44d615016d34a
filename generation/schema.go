package generation

import (
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// Schema returns the JSON schema for Params. The runner serves it so
// operators can discover which knobs a settings patch may carry.
var Schema = sync.OnceValue(func() *jsonschema.Schema {
	return reflector.Reflect(Params{})
})

// PatchReport classifies the keys of a settings patch against the schema.
type PatchReport struct {
	Known   []string
	Unknown []string
}

// InspectPatch walks the patch keys against the schema properties. It does
// not apply anything; callers use it to log what an update will touch and
// which keys will be ignored.
func InspectPatch(patch gjson.Result) PatchReport {
	known := make(map[string]struct{})
	for pair := Schema().Properties.Oldest(); pair != nil; pair = pair.Next() {
		known[pair.Key] = struct{}{}
	}

	var report PatchReport
	patch.ForEach(func(key, _ gjson.Result) bool {
		if _, ok := known[key.String()]; ok {
			report.Known = append(report.Known, key.String())
		} else {
			report.Unknown = append(report.Unknown, key.String())
		}
		return true
	})
	return report
}
