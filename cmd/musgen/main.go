package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/docent/core"
)

// Regenerates core/records_mus.gen.go. Field options are positional, so a
// struct change needs a matching change here.
func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// Allow running from inside core/
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/docent/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())
	g.AddDefinedType(reflect.TypeFor[core.CorpusTag]())
	g.AddDefinedType(reflect.TypeFor[core.Kind]())
	g.AddDefinedType(reflect.TypeFor[core.Stage]())

	// Unix micro timestamps
	micro := typeops.WithTimeUnit(typeops.Micro)

	err = g.AddStruct(reflect.TypeFor[core.SourceLocation](),
		structops.WithField(), // Page
		structops.WithField(), // Offset
		structops.WithField()) // Element
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.ContentUnit](),
		structops.WithField(),      // ID
		structops.WithField(),      // Corpus
		structops.WithField(),      // Kind
		structops.WithField(),      // Payload
		structops.WithField(),      // MediaType
		structops.WithField(),      // Location
		structops.WithField(),      // Ordinal
		structops.WithField(micro)) // ExtractedAt
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.IndexEntry](),
		structops.WithField(),      // UnitID
		structops.WithField(),      // Kind
		structops.WithField(),      // Vector
		structops.WithField(),      // Surrogate
		structops.WithField(),      // Seq
		structops.WithField(micro)) // IndexedAt
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.PipelineState](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micro))
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	err = os.WriteFile("./core/records_mus.gen.go", bs, 0644)
	if err != nil {
		panic(err)
	}
}
