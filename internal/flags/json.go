package flags

import (
	"encoding/json"
	"io"
	"sort"
)

// FlagInfo is one flag in the machine-readable dump. Tooling (IDEs, the
// completion generator) matches on name; commands lists every command the
// flag applies to, with "startup" for startup options.
type FlagInfo struct {
	Name            string   `json:"name"`
	Abbreviation    string   `json:"abbreviation,omitempty"`
	Documentation   string   `json:"documentation,omitempty"`
	HasNegativeFlag bool     `json:"has_negative_flag,omitempty"`
	Commands        []string `json:"commands"`
}

// FlagCollection is the top-level JSON document.
type FlagCollection struct {
	FlagInfos []FlagInfo `json:"flag_infos"`
}

// WriteJSON emits every documented flag exactly once, sorted by name, with
// the commands it applies to. Startup options appear under the pseudo-command
// "startup".
func WriteJSON(w io.Writer, sets []CommandSet) error {
	byName := make(map[string]*FlagInfo)
	for _, c := range sets {
		if c.Flags == nil {
			continue
		}
		for _, o := range DocumentedOptions(c.Flags) {
			info, ok := byName[o.Flag.Name]
			if !ok {
				info = &FlagInfo{
					Name:            o.Flag.Name,
					Abbreviation:    o.Flag.Shorthand,
					Documentation:   o.Flag.Usage,
					HasNegativeFlag: o.IsBool(),
				}
				byName[o.Flag.Name] = info
			}
			info.Commands = append(info.Commands, c.Name)
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var collection FlagCollection
	for _, name := range names {
		collection.FlagInfos = append(collection.FlagInfos, *byName[name])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(collection)
}
