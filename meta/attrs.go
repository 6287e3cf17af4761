package meta

// Well-known attribute types understood by every tangara component.
var (
	// FlagsAttribute marks an Enum whose variants are bit flags.
	FlagsAttribute = Name("Tangara.Flags")
	// DocAttribute carries a documentation string as its first argument.
	DocAttribute = Name("Tangara.Doc")
)

// Attr builds an Attribute.
func Attr(t TypeRef, args ...Value) Attribute {
	return Attribute{Type: t, Args: args}
}

// Doc returns the documentation string attached with DocAttribute.
func (as Attributes) Doc() string {
	if a, ok := as.Find(DocAttribute); ok && len(a.Args) > 0 && a.Args[0].Kind == ValString {
		return a.Args[0].Str
	}
	return ""
}
