package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeDescriptor(t *testing.T) {
	parser := NewMavenParser()

	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{name: "empty", content: "", expected: false},
		{name: "blank", content: "  \n", expected: false},
		{name: "prose", content: "TODO: add the build file", expected: false},
		{name: "bare project", content: "<project></project>", expected: true},
		{name: "with prolog", content: "<?xml version=\"1.0\"?>\n<PROJECT xmlns=\"http://maven.apache.org/POM/4.0.0\">", expected: true},
		{name: "projection is not project", content: "<projection/>", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.LooksLikeDescriptor(tt.content))
		})
	}
}

func TestParsePomAndMissingStarters(t *testing.T) {
	parser := NewMavenParser()

	content := `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>com.acme</groupId>
  <artifactId>app</artifactId>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
    <version>3.2.0</version>
  </parent>
  <dependencies>
    <dependency>
      <groupId>org.springframework.boot</groupId>
      <artifactId>spring-boot-starter-web</artifactId>
    </dependency>
    <dependency>
      <groupId>com.h2database</groupId>
      <artifactId>h2</artifactId>
      <scope>runtime</scope>
    </dependency>
  </dependencies>
</project>`

	project, err := parser.ParsePom(content)
	require.NoError(t, err)

	assert.Equal(t, "com.acme", project.GroupId)
	assert.Equal(t, "3.2.0", project.Parent.Version)
	assert.True(t, project.HasDependency("spring-boot-starter-web"))
	assert.Equal(t, "runtime", project.Dependencies.Dependencies[1].Scope)
	assert.Equal(t, []string{"spring-boot-starter-data-jpa", "spring-boot-starter-validation"}, parser.MissingStarters(project))
}

func TestParsePomInvalid(t *testing.T) {
	parser := NewMavenParser()

	_, err := parser.ParsePom("<project><dependencies></project>")
	assert.Error(t, err)
}
