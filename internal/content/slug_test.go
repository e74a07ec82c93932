package content

import (
	"regexp"
	"testing"
)

var wellFormedSlug = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

func TestDeriveSlug_Example(t *testing.T) {
	if got := DeriveSlug("Hello, World! AI 101"); got != "hello-world-ai-101" {
		t.Errorf("DeriveSlug = %q, want hello-world-ai-101", got)
	}
}

func TestDeriveSlug_Shapes(t *testing.T) {
	cases := map[string]string{
		"Understanding Neural Networks: A Beginner's Guide": "understanding-neural-networks-a-beginners-guide",
		"  leading and trailing  ":                          "leading-and-trailing",
		"multi---hyphen -- run":                             "multi-hyphen-run",
		"-dash-edges-":                                      "dash-edges",
		"Tabs\tand\nnewlines":                               "tabs-and-newlines",
		"Café Ünïcode":                                      "caf-ncode",
		"!!!":                                               "",
	}
	for in, want := range cases {
		if got := DeriveSlug(in); got != want {
			t.Errorf("DeriveSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeriveSlug_AlwaysWellFormed(t *testing.T) {
	titles := []string{
		"The Future of AI Education: Why Traditional Methods Are Failing",
		"Ethics in AI -- Building Responsible Systems",
		" - ",
		"A  B",
		"100% Accuracy?! (Not Quite)",
		"日本語 title",
	}
	for _, title := range titles {
		got := DeriveSlug(title)
		if !wellFormedSlug.MatchString(got) {
			t.Errorf("DeriveSlug(%q) = %q is not well formed", title, got)
		}
	}
}
