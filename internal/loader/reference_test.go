package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReference(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wordpress-reference.json")
	content := `{
		"technology": "WordPress",
		"required_patterns": ["meta_generator_wordpress", "wp_content_path", "wp_json_api"],
		"discriminator_patterns": ["wp_json_api"]
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	set, err := LoadReference(path)
	if err != nil {
		t.Fatalf("LoadReference() error = %v", err)
	}

	if set.Technology != "wordpress" {
		t.Errorf("Technology = %q, want wordpress", set.Technology)
	}
	if got, want := len(set.RequiredPatterns), 3; got != want {
		t.Errorf("len(RequiredPatterns) = %d, want %d", got, want)
	}
	if got, want := len(set.DiscriminatorPatterns), 1; got != want {
		t.Errorf("len(DiscriminatorPatterns) = %d, want %d", got, want)
	}
}

func TestLoadReferenceTechnologyFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileName string
		content  string
		want     string
	}{
		{
			name:     "cms field",
			fileName: "ref.json",
			content:  `{"cms": "Drupal", "required_patterns": ["a"]}`,
			want:     "drupal",
		},
		{
			name:     "file name stem",
			fileName: "joomla-required.json",
			content:  `{"required_patterns": ["a"]}`,
			want:     "joomla",
		},
		{
			name:     "file name with patterns suffix",
			fileName: "typo3_patterns.json",
			content:  `{"required_patterns": ["a"]}`,
			want:     "typo3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.fileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			set, err := LoadReference(path)
			if err != nil {
				t.Fatalf("LoadReference() error = %v", err)
			}
			if set.Technology != tt.want {
				t.Errorf("Technology = %q, want %q", set.Technology, tt.want)
			}
		})
	}
}

func TestLoadReferenceEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty-reference.json")
	if err := os.WriteFile(path, []byte(`{"technology": "wordpress", "required_patterns": []}`), 0o600); err != nil {
		t.Fatal(err)
	}

	set, err := LoadReference(path)
	if !errors.Is(err, ErrEmptyReference) {
		t.Fatalf("LoadReference() error = %v, want ErrEmptyReference", err)
	}
	// The set still comes back so the caller can report which technology
	// the broken reference was for.
	if set == nil || set.Technology != "wordpress" {
		t.Errorf("set = %+v, want technology wordpress", set)
	}
}

func TestLoadReferenceMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadReference(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("LoadReference() error = nil, want error")
	}
}

func TestLoadReferenceInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"required_patterns":`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadReference(path)
	if err == nil {
		t.Fatal("LoadReference() error = nil, want parse error")
	}
}
