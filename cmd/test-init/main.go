package main

import (
	"fmt"
	"time"

	"github.com/petrarca/delphi-migrator/internal/license"
	"github.com/petrarca/delphi-migrator/internal/rules"
	"github.com/petrarca/delphi-migrator/internal/templates"
	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/petrarca/delphi-migrator/internal/validation"
)

func main() {
	start := time.Now()

	t1 := time.Now()
	loadedRules, err := rules.LoadEmbeddedRules()
	if err != nil {
		panic(err)
	}
	fmt.Printf("LoadEmbeddedRules: %v (%d rules)\n", time.Since(t1), len(loadedRules))

	t2 := time.Now()
	if err := validation.ValidateJSONBytes(validation.BundleSchema, []byte(`{"files":{}}`)); err != nil {
		panic(err)
	}
	fmt.Printf("CompileBundleSchema: %v\n", time.Since(t2))

	t3 := time.Now()
	renderer := templates.NewRenderer()
	data := templates.Data{
		ProjectName:       types.DefaultProjectName,
		PackageName:       types.DefaultPackageName,
		SpringBootVersion: "3.2.0",
		JavaVersion:       "17",
	}
	for _, name := range templates.Names {
		if _, err := renderer.Render(name, data); err != nil {
			panic(err)
		}
	}
	fmt.Printf("RenderTemplates: %v (%d templates)\n", time.Since(t3), len(templates.Names))

	t4 := time.Now()
	license.NewLicenseDetector()
	fmt.Printf("NewLicenseDetector: %v\n", time.Since(t4))

	fmt.Printf("\nTotal init: %v\n", time.Since(start))
}
