package flags

import (
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// HTMLCommand is one command's contribution to the HTML docs page.
type HTMLCommand struct {
	Name     string
	Short    string
	Hidden   bool
	Inherits []string
	Flags    *pflag.FlagSet
}

type htmlOption struct {
	Name    string
	Default string
	Usage   string
	Effects []EffectTag
	Tags    []MetadataTag
}

type htmlTag struct {
	Name        string
	Description string
}

type htmlCommandSection struct {
	Name     string
	Title    string
	Inherits []string
	Options  []htmlOption
}

type htmlData struct {
	Commands     []HTMLCommand
	Startup      []htmlOption
	Common       []htmlOption
	Sections     []htmlCommandSection
	EffectTags   []htmlTag
	MetadataTags []htmlTag
}

var htmlTmpl = template.Must(template.New("everything").Parse(`<h2>Commands</h2>
<table>
{{- range .Commands}}{{if not .Hidden}}
<tr>
  <td><a href="#{{.Name}}"><code>{{.Name}}</code></a></td>
  <td>{{.Short}}</td>
</tr>
{{- end}}{{end}}
</table>

<h2>Startup Options</h2>
{{template "options" .Startup}}

<h2><a name="common_options">Options Common to all Commands</a></h2>
{{template "options" .Common}}
{{range .Sections}}
<h2><a name="{{.Name}}">{{.Title}} Options</a></h2>
{{- if .Inherits}}
<p>Inherits all options from {{range $i, $c := .Inherits}}{{if $i}} and {{end}}<a href="#{{$c}}">{{$c}}</a>{{end}}.</p>
{{- end}}
{{template "options" .Options}}
{{- end}}

<h3>Option Effect Tags</h3>
<table>
{{- range .EffectTags}}
<tr>
  <td id="effect_tag_{{.Name}}"><code>{{.Name}}</code></td>
  <td>{{.Description}}</td>
</tr>
{{- end}}
</table>

<h3>Option Metadata Tags</h3>
<table>
{{- range .MetadataTags}}
<tr>
  <td id="metadata_tag_{{.Name}}"><code>{{.Name}}</code></td>
  <td>{{.Description}}</td>
</tr>
{{- end}}
</table>
{{define "options"}}<dl>
{{- range .}}
<dt><code>--{{.Name}}</code>{{if .Default}} (default: <code>{{.Default}}</code>){{end}}</dt>
<dd>{{.Usage}}{{if .Effects}}
  <br>Tags:{{range .Effects}} <a href="#effect_tag_{{.}}"><code>{{.}}</code></a>{{end}}{{range .Tags}} <a href="#metadata_tag_{{.}}"><code>{{.}}</code></a>{{end}}{{end}}</dd>
{{- end}}
</dl>{{end}}`))

// WriteHTML emits the single-page HTML reference: command table, startup
// options, common options, one section per command, and tag glossaries.
func WriteHTML(w io.Writer, product string, startup, common *pflag.FlagSet, commands []HTMLCommand) error {
	data := htmlData{
		Commands: commands,
		Startup:  htmlOptions(startup),
		Common:   htmlOptions(common),
	}
	for _, c := range commands {
		if c.Hidden {
			continue
		}
		data.Sections = append(data.Sections, htmlCommandSection{
			Name:     c.Name,
			Title:    capitalize(c.Name),
			Inherits: c.Inherits,
			Options:  htmlOptions(c.Flags),
		})
	}

	effects := EffectTagDescriptions(product)
	for _, tag := range sortedKeys(effects) {
		data.EffectTags = append(data.EffectTags, htmlTag{Name: string(tag), Description: effects[tag]})
	}
	metadata := MetadataTagDescriptions()
	for _, tag := range sortedKeys(metadata) {
		data.MetadataTags = append(data.MetadataTags, htmlTag{Name: string(tag), Description: metadata[tag]})
	}

	return htmlTmpl.Execute(w, data)
}

func htmlOptions(fs *pflag.FlagSet) []htmlOption {
	if fs == nil {
		return nil
	}
	var out []htmlOption
	for _, o := range DocumentedOptions(fs) {
		name := o.Flag.Name
		if o.IsBool() {
			name = "[no]" + name
		}
		out = append(out, htmlOption{
			Name:    name,
			Default: o.Flag.DefValue,
			Usage:   o.Flag.Usage,
			Effects: o.Effects,
			Tags:    o.Metadata,
		})
	}
	return out
}

func sortedKeys[T ~string, V any](m map[T]V) []T {
	keys := make([]T, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
