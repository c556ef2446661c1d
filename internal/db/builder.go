package db

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition over JSON documents.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: path, Alias: alias, Type: IndexFieldNumeric,
	})
	return b
}

// NumericSortable adds a NUMERIC SORTABLE field.
func (b *IndexBuilder) NumericSortable(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: path, Alias: alias, Type: IndexFieldNumeric, Sortable: true,
	})
	return b
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: path, Alias: alias, Type: IndexFieldTag,
	})
	return b
}

// TagWithSep adds a TAG field with a custom separator.
func (b *IndexBuilder) TagWithSep(path, alias, separator string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: path, Alias: alias, Type: IndexFieldTag, TagSeparator: separator,
	})
	return b
}

// Text adds a TEXT field.
func (b *IndexBuilder) Text(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: path, Alias: alias, Type: IndexFieldText,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error. Index definitions are
// static, so a failure here is a programming error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
