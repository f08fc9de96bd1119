package signature

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- helpers ----------

func findSig(t *testing.T, table *Table, name string) Signature {
	t.Helper()
	for _, s := range table.Signatures {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("signature %q not found", name)
	return Signature{}
}

func writeSigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signatures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------- tests ----------

func TestDefaultTableIsValid(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	counts := table.Count()
	for _, cat := range Categories {
		assert.Greater(t, counts[cat], 0, "category %s has no signatures", cat)
	}

	angular := findSig(t, table, "Angular")
	assert.Equal(t, "frameworks", angular.Category)
	assert.True(t, angular.Patterns[0].MatchString(`"@angular/core": "^17.0.0"`))
}

func TestParseScalarAndMappingPatterns(t *testing.T) {
	table, err := Parse([]byte(heredoc.Doc(`
		frameworks:
		  - name: Angular
		    weight: 1.0
		    patterns:
		      - "@angular/core"
		      - match: 'ng\s+serve'
		        regex: true
		        weight: 0.25
		        target: content
	`)))
	require.NoError(t, err)
	require.Len(t, table.Signatures, 1)

	sig := table.Signatures[0]
	require.Len(t, sig.Patterns, 2)
	assert.Equal(t, 1.0, sig.Patterns[0].Weight, "scalar pattern inherits signature weight")
	assert.Equal(t, TargetAny, sig.Patterns[0].Target)
	assert.Equal(t, 0.25, sig.Patterns[1].Weight)
	assert.True(t, sig.Patterns[1].Applies(TargetContent))
	assert.False(t, sig.Patterns[1].Applies(TargetPath))
	assert.True(t, sig.Patterns[1].MatchString("run NG   SERVE now"))
}

func TestPatternCaseSensitivity(t *testing.T) {
	table, err := Parse([]byte(heredoc.Doc(`
		testing:
		  - name: JUnit
		    patterns:
		      - match: org.junit
		        case_sensitive: true
		  - name: Jest
		    patterns:
		      - jest
	`)))
	require.NoError(t, err)

	junit := findSig(t, table, "JUnit")
	assert.True(t, junit.Patterns[0].MatchString("import org.junit.Test;"))
	assert.False(t, junit.Patterns[0].MatchString("import ORG.JUNIT.Test;"))

	jest := findSig(t, table, "Jest")
	assert.True(t, jest.Patterns[0].MatchString(`"JEST": "29"`))
	assert.Equal(t, DefaultWeight, jest.Patterns[0].Weight)
}

func TestParseRegexIsMultiline(t *testing.T) {
	table, err := Parse([]byte(heredoc.Doc(`
		frameworks:
		  - name: Flask
		    patterns:
		      - match: '^flask([<>=~! ]|$)'
		        regex: true
	`)))
	require.NoError(t, err)
	p := table.Signatures[0].Patterns[0]
	assert.True(t, p.MatchString("requests==2.0\nflask==3.0\n"))
	assert.False(t, p.MatchString("flask-cors==1.0\n"))
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown category",
			yaml: "languages:\n  - name: Go\n    patterns: [go]\n",
			want: ErrUnknownCategory,
		},
		{
			name: "empty name",
			yaml: "frameworks:\n  - name: ''\n    patterns: [x]\n",
			want: ErrEmptyName,
		},
		{
			name: "no patterns",
			yaml: "frameworks:\n  - name: React\n    patterns: []\n",
			want: ErrNoPatterns,
		},
		{
			name: "bad regex",
			yaml: "frameworks:\n  - name: React\n    patterns:\n      - match: '(unclosed'\n        regex: true\n",
			want: ErrInvalidPattern,
		},
		{
			name: "weight above one",
			yaml: "frameworks:\n  - name: React\n    weight: 1.5\n    patterns: [react]\n",
			want: ErrInvalidWeight,
		},
		{
			name: "negative pattern weight",
			yaml: "frameworks:\n  - name: React\n    patterns:\n      - match: react\n        weight: -0.1\n",
			want: ErrInvalidWeight,
		},
		{
			name: "duplicate across categories",
			yaml: "frameworks:\n  - name: Redis\n    patterns: [a]\ndatabases:\n  - name: Redis\n    patterns: [b]\n",
			want: ErrDuplicateName,
		},
		{
			name: "misspelled pattern field",
			yaml: "frameworks:\n  - name: React\n    patterns:\n      - match: 'react.*'\n        regx: true\n",
			want: ErrInvalidPattern,
		},
		{
			name: "empty table",
			yaml: "# nothing here\n",
			want: ErrEmptyTable,
		},
		{
			name: "unknown target",
			yaml: "frameworks:\n  - name: React\n    patterns:\n      - match: react\n        target: header\n",
			want: ErrInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("frameworks: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing signatures")
}

func TestParseCategoryOrderIsFixed(t *testing.T) {
	table, err := Parse([]byte(heredoc.Doc(`
		ci_cd:
		  - name: Jenkins
		    patterns: [Jenkinsfile]
		frameworks:
		  - name: Gin
		    patterns: [gin-gonic]
		databases:
		  - name: Redis
		    patterns: [redis]
	`)))
	require.NoError(t, err)
	var names []string
	for _, s := range table.Signatures {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Gin", "Redis", "Jenkins"}, names)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	table, err := Load("", false)
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, len(def.Signatures), len(table.Signatures))
}

func TestLoadMergesUserTable(t *testing.T) {
	path := writeSigFile(t, heredoc.Doc(`
		frameworks:
		  - name: Angular
		    weight: 1.0
		    patterns: ["@angular/core"]
		  - name: Htmx
		    patterns: [htmx.org]
	`))

	table, err := Load(path, false)
	require.NoError(t, err)

	def, err := Default()
	require.NoError(t, err)
	assert.Len(t, table.Signatures, len(def.Signatures)+1)

	angular := findSig(t, table, "Angular")
	require.Len(t, angular.Patterns, 1)
	assert.Equal(t, 1.0, angular.Patterns[0].Weight)

	htmx := findSig(t, table, "Htmx")
	assert.Equal(t, "frameworks", htmx.Category)
}

func TestLoadReplace(t *testing.T) {
	path := writeSigFile(t, "databases:\n  - name: Cassandra\n    patterns: [cassandra-driver]\n")

	table, err := Load(path, true)
	require.NoError(t, err)
	require.Len(t, table.Signatures, 1)
	assert.Equal(t, "Cassandra", table.Signatures[0].Name)
}

func TestLoadReplaceFromFile(t *testing.T) {
	path := writeSigFile(t, "replace: true\ntesting:\n  - name: Ava\n    patterns: ['\"ava\":']\n")

	table, err := Load(path, false)
	require.NoError(t, err)
	require.Len(t, table.Signatures, 1)
	assert.Equal(t, "Ava", table.Signatures[0].Name)
}

func TestLoadInvalidUserTableIsFatal(t *testing.T) {
	path := writeSigFile(t, "languages:\n  - name: Go\n    patterns: [go]\n")

	_, err := Load(path, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseRejectsUnknownSignatureField(t *testing.T) {
	_, err := Parse([]byte("frameworks:\n  - name: React\n    wieght: 0.9\n    patterns: [react]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wieght")
}

func TestLoadReplaceWithNoSignatures(t *testing.T) {
	path := writeSigFile(t, "replace: true\n")

	_, err := Load(path, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = Load(writeSigFile(t, "frameworks: []\n"), true)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestLoadMergeWithEmptyUserFile(t *testing.T) {
	table, err := Load(writeSigFile(t, ""), false)
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Len(t, table.Signatures, len(def.Signatures))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	data, err := table.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, len(table.Signatures), len(again.Signatures))
	assert.Equal(t, table.Count(), again.Count())
}
