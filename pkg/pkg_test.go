package pkg

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "identstr"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestEnvPrefix(t *testing.T) {
	if !strings.HasPrefix(EnvPrefix, strings.ToUpper(Name)) {
		t.Errorf("EnvPrefix %q should start with %q", EnvPrefix, strings.ToUpper(Name))
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from the VERSION file next to this package.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version() != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version())
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestErrorChain(t *testing.T) {
	inner := MakeErrorf("open %s", "x.rs")
	err := ErrReadInput.Wrap(inner)

	if got, want := err.Error(), "failed to read input: open x.rs"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	chain := UnwrapErrors(err)
	if len(chain) < 2 {
		t.Fatalf("UnwrapErrors returned %d errors, want at least 2", len(chain))
	}
}

func TestMakeErrorSkipsNil(t *testing.T) {
	if err := MakeError(nil, nil); err != nil {
		t.Errorf("MakeError(nil, nil) = %v, want nil", err)
	}
}

func TestErrorIs(t *testing.T) {
	err := ErrDiagnostics.Wrapf("%d diagnostics in %s", 2, "x.rs")

	if !errors.Is(err, ErrDiagnostics) {
		t.Errorf("errors.Is(%v, ErrDiagnostics) = false, want true", err)
	}

	if errors.Is(err, ErrReadInput) {
		t.Errorf("errors.Is(%v, ErrReadInput) = true, want false", err)
	}

	wrapped := fmt.Errorf("expand: %w", err)
	if !errors.Is(wrapped, ErrDiagnostics) {
		t.Errorf("errors.Is through fmt.Errorf = false, want true")
	}

	// A chain holding an uncomparable error is never equal to a sentinel.
	nested := ErrWriteOutput.Wrap(MakeErrorf("a").Wrap(MakeErrorf("b")))
	if errors.Is(nested, ErrReadInput) {
		t.Errorf("errors.Is(%v, ErrReadInput) = true, want false", nested)
	}
}
