package collector

import "testing"

func TestLanguageForPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"a.py", "python"},
		{"src/b.ts", "typescript"},
		{"c.TSX", "typescript"},
		{"main.go", "go"},
		{"style.SCSS", "css"},
		{"README.md", "markdown"},
		{"notes.txt", "text"},
		{"weird.xyz", "text"},
		{"Makefile", "text"},
		{"", "text"},
	}
	for _, c := range cases {
		if got := LanguageForPath(c.path); got != c.want {
			t.Errorf("LanguageForPath(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestRecognizedExt(t *testing.T) {
	if !RecognizedExt("a.py") {
		t.Error("expected .py to be recognized")
	}
	if RecognizedExt("image.png") {
		t.Error("expected .png to be rejected")
	}
	if RecognizedExt("Makefile") {
		t.Error("expected extension-less file to be rejected")
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"one\ntwo\n", 2},
	}
	for _, c := range cases {
		if got := CountLines(c.in); got != c.want {
			t.Errorf("CountLines(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
