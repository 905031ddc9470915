package builder

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutFor(base, pkg string) types.ProjectLayout {
	return types.ProjectLayout{
		Base:             base,
		SrcMainJava:      filepath.Join(base, "src", "main", "java"),
		SrcMainResources: filepath.Join(base, "src", "main", "resources"),
		PackageName:      pkg,
		Dirs:             map[string]string{},
	}
}

func readFile(t *testing.T, base, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func bundleOf(pkg string, files ...types.BundleFile) types.GeneratedCodeBundle {
	return types.GeneratedCodeBundle{ProjectName: "legacy-erp", PackageName: pkg, Files: files}
}

func text(path, content string) types.BundleFile {
	return types.BundleFile{Path: path, Content: types.TextContent(content)}
}

func TestBuildEmptyBundle(t *testing.T) {
	base := t.TempDir()
	b := New(Options{})

	manifest, err := b.Build(types.GeneratedCodeBundle{}, layoutFor(base, ""))
	require.NoError(t, err)

	expected := []string{
		"pom.xml",
		"src/main/resources/application.properties",
		"README.md",
		".gitignore",
		"validate.sh",
		"validate.bat",
	}
	assert.Equal(t, expected, manifest.Files)
	assert.Equal(t, len(expected), manifest.TotalFiles)
	assert.Equal(t, base, manifest.Structure["base"])

	for _, rel := range expected {
		assert.FileExists(t, filepath.Join(base, filepath.FromSlash(rel)))
	}

	pom := readFile(t, base, "pom.xml")
	assert.Contains(t, pom, "<groupId>"+types.DefaultPackageName+"</groupId>")
	assert.Contains(t, pom, "<artifactId>"+types.DefaultProjectName+"</artifactId>")
	assert.Contains(t, pom, "<version>3.2.0</version>")
	assert.Contains(t, pom, "<java.version>17</java.version>")
}

func TestBuildReplacesEmptyPom(t *testing.T) {
	base := t.TempDir()
	bundle := bundleOf("com.acme.app", text("pom.xml", ""))

	manifest, err := New(Options{}).Build(bundle, layoutFor(base, "com.acme.app"))
	require.NoError(t, err)

	pom := readFile(t, base, "pom.xml")
	assert.Contains(t, pom, "<artifactId>spring-boot-starter-web</artifactId>")
	assert.Contains(t, pom, "<groupId>com.acme.app</groupId>")
	assert.Equal(t, "pom.xml", manifest.Files[0])
	assert.Equal(t, 1, strings.Count(strings.Join(manifest.Files, ","), "pom.xml"))
}

func TestBuildDefaultPomWithSpecialCharacters(t *testing.T) {
	base := t.TempDir()
	bundle := types.GeneratedCodeBundle{
		ProjectName: "Pizza & <Co>",
		PackageName: "com.acme.app",
		Files:       []types.BundleFile{text("pom.xml", "")},
	}

	_, err := New(Options{}).Build(bundle, layoutFor(base, "com.acme.app"))
	require.NoError(t, err)

	project, err := parsers.NewMavenParser().ParsePom(readFile(t, base, "pom.xml"))
	require.NoError(t, err)
	assert.Equal(t, "Pizza & <Co>", project.ArtifactId)
	assert.Equal(t, "com.acme.app", project.GroupId)
	assert.True(t, project.HasDependency("spring-boot-starter-web"))
}

func TestBuildKeepsRealPom(t *testing.T) {
	base := t.TempDir()
	pom := `<project><groupId>x</groupId><dependencies>
<dependency><artifactId>spring-boot-starter-web</artifactId></dependency>
</dependencies></project>`
	var out bytes.Buffer
	b := New(Options{Progress: progress.WriterFor(true, &out)})

	_, err := b.Build(bundleOf("com.acme.app", text("pom.xml", pom)), layoutFor(base, "com.acme.app"))
	require.NoError(t, err)

	assert.Equal(t, pom, readFile(t, base, "pom.xml"))
	assert.Contains(t, out.String(), "missing dependency spring-boot-starter-data-jpa")
	assert.Contains(t, out.String(), "missing dependency spring-boot-starter-validation")
	assert.NotContains(t, out.String(), "missing dependency spring-boot-starter-web")
}

func TestBuildApplicationProperties(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		replaced bool
	}{
		{"empty", "", true},
		{"whitespace", "  \n", true},
		{"no spring keys", "server.port=9090\n", true},
		{"spring keys", "spring.application.name=custom\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			bundle := bundleOf("com.acme.app", text(ConfigPath, tt.content))

			_, err := New(Options{}).Build(bundle, layoutFor(base, "com.acme.app"))
			require.NoError(t, err)

			props := readFile(t, base, ConfigPath)
			if tt.replaced {
				assert.Contains(t, props, "spring.datasource.url=jdbc:h2:mem:testdb")
				assert.Contains(t, props, "logging.level.com.acme.app=DEBUG")
			} else {
				assert.Equal(t, tt.content, props)
			}
		})
	}
}

func TestBuildJavaFiles(t *testing.T) {
	base := t.TempDir()
	bundle := bundleOf("com.acme.app",
		text("src/main/java/com/x/y/Foo.java", "public class Foo {}\n"),
		types.BundleFile{
			Path: "src/main/java/com/acme/app/controller/CustomerController.java",
			Content: types.RecordContent(map[string]interface{}{
				"content":     "@RestController\npublic class CustomerController {}\n",
				"description": "customer endpoints",
			}),
		},
		text("Application.java", "@SpringBootApplication\npublic class Application {}\n"),
	)

	manifest, err := New(Options{}).Build(bundle, layoutFor(base, "com.acme.app"))
	require.NoError(t, err)
	assert.Equal(t, 9, manifest.TotalFiles)

	foo := readFile(t, base, "src/main/java/com/x/y/Foo.java")
	assert.True(t, strings.HasPrefix(foo, "package com.x.y;\n"))

	controller := readFile(t, base, "src/main/java/com/acme/app/controller/CustomerController.java")
	assert.True(t, strings.HasPrefix(controller, "package com.acme.app.controller;\n"))
	assert.Contains(t, controller, "import org.springframework.web.bind.annotation.*;")
	assert.Contains(t, controller, "import org.springframework.http.ResponseEntity;")
	assert.NotContains(t, controller, "customer endpoints")

	app := readFile(t, base, "Application.java")
	assert.True(t, strings.HasPrefix(app, "package com.acme.app;\n"))
	assert.Contains(t, app, "import org.springframework.boot.SpringApplication;")
}

func TestBuildKeepsBundleScaffoldFiles(t *testing.T) {
	base := t.TempDir()
	bundle := bundleOf("com.acme.app",
		text("README.md", "# custom"),
		text("validate.sh", "#!/bin/sh\nmvn verify\n"),
	)

	manifest, err := New(Options{}).Build(bundle, layoutFor(base, "com.acme.app"))
	require.NoError(t, err)

	assert.Equal(t, "# custom", readFile(t, base, "README.md"))
	assert.Equal(t, 6, manifest.TotalFiles)

	info, err := os.Stat(filepath.Join(base, "validate.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestBuildScriptModes(t *testing.T) {
	base := t.TempDir()
	_, err := New(Options{}).Build(types.GeneratedCodeBundle{}, layoutFor(base, ""))
	require.NoError(t, err)

	sh, err := os.Stat(filepath.Join(base, "validate.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), sh.Mode().Perm())
	assert.True(t, strings.HasPrefix(readFile(t, base, "validate.sh"), "#!/bin/bash"))
	assert.Contains(t, readFile(t, base, "validate.bat"), "mvn clean compile")
}

func TestBuildHonoursVersions(t *testing.T) {
	base := t.TempDir()
	b := New(Options{SpringBootVersion: "3.3.4", JavaVersion: "21"})

	_, err := b.Build(types.GeneratedCodeBundle{}, layoutFor(base, ""))
	require.NoError(t, err)

	pom := readFile(t, base, "pom.xml")
	assert.Contains(t, pom, "<version>3.3.4</version>")
	assert.Contains(t, pom, "<java.version>21</java.version>")
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		bundle types.GeneratedCodeBundle
		stage  Stage
		path   string
	}{
		{"escaping path", bundleOf("com.x", text("../evil.txt", "x")), StageNormalize, "../evil.txt"},
		{"absolute path", bundleOf("com.x", text("/etc/passwd", "x")), StageNormalize, "/etc/passwd"},
		{"empty path", bundleOf("com.x", text("", "x")), StageNormalize, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			_, err := New(Options{}).Build(tt.bundle, layoutFor(base, "com.x"))
			require.Error(t, err)

			var buildErr *BuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, tt.stage, buildErr.Stage)
			assert.Equal(t, tt.path, buildErr.Path)
			assert.Contains(t, err.Error(), string(tt.stage))

			entries, err := os.ReadDir(base)
			require.NoError(t, err)
			assert.Empty(t, entries, "nothing is written when preparation fails")
		})
	}
}

func TestBuildInvalidInferredPackage(t *testing.T) {
	base := t.TempDir()
	var out bytes.Buffer
	bundle := bundleOf("com.x", text("src/main/java/com/my-app/Foo.java", "class Foo {}"))

	manifest, err := New(Options{Progress: progress.WriterFor(true, &out)}).Build(bundle, layoutFor(base, "com.x"))
	require.NoError(t, err)

	assert.Contains(t, manifest.Files, "src/main/java/com/my-app/Foo.java")
	foo := readFile(t, base, "src/main/java/com/my-app/Foo.java")
	assert.True(t, strings.HasPrefix(foo, "package com.my-app;\n\n"))
	assert.Contains(t, out.String(), "package com.my-app is not a valid Java name")
}

func TestBuildWriteError(t *testing.T) {
	base := t.TempDir()
	// A file where a directory is needed
	require.NoError(t, os.WriteFile(filepath.Join(base, "src"), []byte("x"), 0o644))

	_, err := New(Options{}).Build(types.GeneratedCodeBundle{}, layoutFor(base, ""))

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageWrite, buildErr.Stage)
	assert.Equal(t, ConfigPath, buildErr.Path)
}

func TestBuildMissingBase(t *testing.T) {
	_, err := New(Options{}).Build(types.GeneratedCodeBundle{}, types.ProjectLayout{})

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageWrite, buildErr.Stage)
}

func TestSummary(t *testing.T) {
	b := New(Options{})
	empty := b.Summary()
	assert.Zero(t, empty.TotalFiles)
	assert.Empty(t, empty.Files)

	base := t.TempDir()
	_, err := b.Build(bundleOf("com.acme.app", text("src/main/java/com/acme/app/A.java", "class A {}")), layoutFor(base, "com.acme.app"))
	require.NoError(t, err)

	summary := b.Summary()
	assert.Equal(t, 7, summary.TotalFiles)
	assert.Equal(t, "src/main/java/com/acme/app/A.java", summary.Files[0])

	summary.Files[0] = "changed"
	assert.Equal(t, "src/main/java/com/acme/app/A.java", b.Summary().Files[0])
}

func TestBuildSameDestinationConcurrently(t *testing.T) {
	base := t.TempDir()
	var wg sync.WaitGroup
	errs := make([]error, 4)

	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = New(Options{}).Build(bundleOf("com.acme.app", text("pom.xml", "")), layoutFor(base, "com.acme.app"))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Contains(t, readFile(t, base, "pom.xml"), "spring-boot-starter-web")
}

func TestDestinationKey(t *testing.T) {
	base := t.TempDir()
	assert.Equal(t, destinationKey(base), destinationKey(base+string(filepath.Separator)+"."))
}
