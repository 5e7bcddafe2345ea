// Package flags layers an option registry on top of pflag. Flag definition
// stays plain pflag; this package attaches documentation metadata through
// pflag annotations (the same mechanism cobra uses for completion directives)
// and provides the enumeration, rendering, and dump surfaces the help command
// introspects.
package flags

import (
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// Annotation keys. Stored on pflag.Flag.Annotations.
const (
	categoryAnnotation = "anvil_doc_category"
	effectAnnotation   = "anvil_effect_tags"
	metadataAnnotation = "anvil_metadata_tags"
)

// Category places an option in the documentation index.
type Category string

const (
	CategoryStartup         Category = "startup"
	CategoryLogging         Category = "logging"
	CategoryExecution       Category = "execution"
	CategoryOutputSelection Category = "output selection"
	CategoryMisc            Category = "misc"
	CategoryUncategorized   Category = "uncategorized"
)

// EffectTag describes what an option influences.
type EffectTag string

const (
	EffectAffectsOutputs  EffectTag = "affects_outputs"
	EffectTerminalOutput  EffectTag = "terminal_output"
	EffectExecution       EffectTag = "execution"
	EffectHostResources   EffectTag = "host_machine_resource_optimizations"
	EffectEagernessToExit EffectTag = "eagerness_to_exit"
)

// MetadataTag flags the maturity or visibility of an option.
type MetadataTag string

const (
	MetadataExperimental MetadataTag = "experimental"
	MetadataDeprecated   MetadataTag = "deprecated"
	MetadataHidden       MetadataTag = "hidden"
	MetadataInternal     MetadataTag = "internal"
)

// EffectTagDescriptions maps each effect tag to its glossary entry.
func EffectTagDescriptions(product string) map[EffectTag]string {
	return map[EffectTag]string{
		EffectAffectsOutputs:  "This option affects " + product + "'s outputs.",
		EffectTerminalOutput:  "This option affects " + product + "'s terminal output.",
		EffectExecution:       "This option affects how " + product + " executes commands.",
		EffectHostResources:   "This option affects resource usage on the host machine.",
		EffectEagernessToExit: "This option affects how eagerly " + product + " exits on failure.",
	}
}

// MetadataTagDescriptions maps each documentable metadata tag to its glossary
// entry. Hidden and internal are omitted: they mark options kept out of docs.
func MetadataTagDescriptions() map[MetadataTag]string {
	return map[MetadataTag]string{
		MetadataExperimental: "This option is experimental and may change or be removed at any time.",
		MetadataDeprecated:   "This option is deprecated and will be removed in a future release.",
	}
}

// Doc is the documentation metadata attached to an option.
type Doc struct {
	Category Category
	Effects  []EffectTag
	Metadata []MetadataTag
}

// Annotate attaches doc metadata to an already-defined flag. It panics if the
// flag does not exist; registration happens at init time, so a missing flag
// is a programming error.
func Annotate(fs *pflag.FlagSet, name string, doc Doc) {
	if fs.Lookup(name) == nil {
		panic("flags: annotating undefined flag --" + name)
	}
	cat := doc.Category
	if cat == "" {
		cat = CategoryUncategorized
	}
	mustSet(fs, name, categoryAnnotation, []string{string(cat)})
	if len(doc.Effects) > 0 {
		mustSet(fs, name, effectAnnotation, tagStrings(doc.Effects))
	}
	if len(doc.Metadata) > 0 {
		mustSet(fs, name, metadataAnnotation, tagStrings(doc.Metadata))
	}
}

func mustSet(fs *pflag.FlagSet, name, key string, values []string) {
	if err := fs.SetAnnotation(name, key, values); err != nil {
		panic("flags: " + err.Error())
	}
}

func tagStrings[T ~string](tags []T) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// Option pairs a pflag flag with its registry metadata.
type Option struct {
	Flag     *pflag.Flag
	Category Category
	Effects  []EffectTag
	Metadata []MetadataTag
}

// HasMetadata reports whether the option carries the given tag.
func (o Option) HasMetadata(tag MetadataTag) bool {
	for _, t := range o.Metadata {
		if t == tag {
			return true
		}
	}
	return false
}

// Documented reports whether the option belongs in user-facing docs.
// pflag-level hidden flags and options tagged hidden/internal are excluded.
func (o Option) Documented() bool {
	if o.Flag.Hidden {
		return false
	}
	return !o.HasMetadata(MetadataHidden) && !o.HasMetadata(MetadataInternal)
}

// IsBool reports whether the option is a boolean flag, which documents a
// --noname negative spelling.
func (o Option) IsBool() bool {
	return o.Flag.Value.Type() == "bool"
}

func optionFor(f *pflag.Flag) Option {
	o := Option{Flag: f, Category: CategoryUncategorized}
	if v, ok := f.Annotations[categoryAnnotation]; ok && len(v) > 0 {
		o.Category = Category(v[0])
	}
	for _, t := range f.Annotations[effectAnnotation] {
		o.Effects = append(o.Effects, EffectTag(t))
	}
	for _, t := range f.Annotations[metadataAnnotation] {
		o.Metadata = append(o.Metadata, MetadataTag(t))
	}
	return o
}

// Visit calls fn for every flag in fs in lexical order, wrapped as an Option.
func Visit(fs *pflag.FlagSet, fn func(Option)) {
	var all []Option
	fs.VisitAll(func(f *pflag.Flag) {
		all = append(all, optionFor(f))
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Flag.Name < all[j].Flag.Name })
	for _, o := range all {
		fn(o)
	}
}

// DocumentedOptions returns the documented options of fs in lexical order.
func DocumentedOptions(fs *pflag.FlagSet) []Option {
	var out []Option
	Visit(fs, func(o Option) {
		if o.Documented() {
			out = append(out, o)
		}
	})
	return out
}

// Merged returns a flag set containing all flags from each of sets, in
// declaration order of the sets. Later sets do not override earlier flags
// with the same name; pflag keeps the first definition.
func Merged(name string, sets ...*pflag.FlagSet) *pflag.FlagSet {
	merged := pflag.NewFlagSet(name, pflag.ContinueOnError)
	for _, fs := range sets {
		if fs != nil {
			merged.AddFlagSet(fs)
		}
	}
	return merged
}

// EnvVarName converts a command name to its shell-variable spelling:
// lower-hyphen to UPPER_UNDERSCORE, e.g. "mobile-install" to "MOBILE_INSTALL".
func EnvVarName(command string) string {
	return strings.ToUpper(strings.ReplaceAll(command, "-", "_"))
}
