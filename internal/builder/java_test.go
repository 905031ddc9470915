package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferPackage(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"main source root", "src/main/java/com/x/y/Foo.java", "com.x.y"},
		{"test source root", "src/test/java/com/x/FooTest.java", "com.x"},
		{"nested module", "backend/src/main/java/org/acme/Bar.java", "org.acme"},
		{"windows separators", `src\main\java\com\x\Foo.java`, "com.x"},
		{"directly in root", "src/main/java/Foo.java", "com.fallback"},
		{"outside source root", "Foo.java", "com.fallback"},
		{"other layout", "app/com/x/Foo.java", "com.fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferPackage(tt.path, "com.fallback"))
		})
	}
}

func TestHasPackage(t *testing.T) {
	assert.True(t, HasPackage("package com.x;\n\nclass A {}"))
	assert.True(t, HasPackage("// header\n  package com.x ;\nclass A {}"))
	assert.False(t, HasPackage("class A {}"))
	assert.False(t, HasPackage("// this package is generated\nclass A {}"))
}

func TestEnsurePackage(t *testing.T) {
	out := EnsurePackage("public class Foo {}", "com.x.y")
	assert.Equal(t, "package com.x.y;\n\npublic class Foo {}", out)
	assert.True(t, strings.HasPrefix(out, "package com.x.y;"))

	existing := "package a.b;\n\nclass A {}"
	assert.Equal(t, existing, EnsurePackage(existing, "com.x"))
	assert.Equal(t, "class A {}", EnsurePackage("class A {}", ""))
}

func TestRoleOf(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{"src/main/java/com/x/controller/CustomerController.java", "Controller", true},
		{"src/main/java/com/x/service/CustomerService.java", "Service", true},
		{"src/main/java/com/x/repository/CustomerRepository.java", "Repository", true},
		{"src/main/java/com/x/Application.java", "Application", true},
		{"src/main/java/com/x/ServiceController.java", "Controller", true},
		{"src/main/java/com/x/Controller/model/Customer.java", "", false},
		{"src/main/java/com/x/customercontroller.java", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			role, ok := RoleOf(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, role.Role)
		})
	}
}

func TestInjectImports(t *testing.T) {
	imports := []string{"org.example.A", "org.example.B"}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "after last import",
			content:  "package x;\n\nimport java.util.List;\n\nclass C {}",
			expected: "package x;\n\nimport java.util.List;\nimport org.example.A;\nimport org.example.B;\n\nclass C {}",
		},
		{
			name:     "after package and blank line",
			content:  "package x;\n\nclass C {}",
			expected: "package x;\n\nimport org.example.A;\nimport org.example.B;\nclass C {}",
		},
		{
			name:     "after package without blank line",
			content:  "package x;\nclass C {}",
			expected: "package x;\nimport org.example.A;\nimport org.example.B;\nclass C {}",
		},
		{
			name:     "at the top",
			content:  "class C {}",
			expected: "import org.example.A;\nimport org.example.B;\nclass C {}",
		},
		{
			name:     "existing import kept once",
			content:  "package x;\n\nimport org.example.B;\n\nclass C {}",
			expected: "package x;\n\nimport org.example.B;\nimport org.example.A;\n\nclass C {}",
		},
		{
			name:     "crlf line endings",
			content:  "package x;\r\n\r\nclass C {}",
			expected: "package x;\r\n\r\nimport org.example.A;\r\nimport org.example.B;\r\nclass C {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InjectImports(tt.content, imports))
		})
	}
}

func TestInjectImportsIsIdempotent(t *testing.T) {
	role, ok := RoleOf("src/main/java/com/x/CustomerController.java")
	assert.True(t, ok)

	content := "package com.x;\n\nimport java.util.List;\n\n@RestController\npublic class CustomerController {}\n"
	once := InjectImports(content, role.Imports)
	twice := InjectImports(once, role.Imports)
	assert.Equal(t, once, twice)

	for _, imp := range role.Imports {
		assert.Equal(t, 1, strings.Count(twice, "import "+imp+";"), imp)
	}
}
