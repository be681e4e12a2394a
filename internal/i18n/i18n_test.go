package i18n

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Language{
		"zh":    Chinese,
		"ZH":    English,
		" zh":   English,
		"en":    English,
		"":      English,
		"fr":    English,
		"zh-CN": English,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToggle(t *testing.T) {
	if English.Toggle() != Chinese || Chinese.Toggle() != English {
		t.Fatalf("toggle should swap languages")
	}
}

func TestEveryKeyHasBothLanguages(t *testing.T) {
	for key, entry := range table {
		if entry[0] == "" || entry[1] == "" {
			t.Errorf("key %s missing a translation", key)
		}
	}
	if got := Chinese.T(LoadFailed); got != "记忆加载失败" {
		t.Errorf("unexpected zh string %q", got)
	}
	if got := English.T(Key("missing")); got != "missing" {
		t.Errorf("unknown key should echo, got %q", got)
	}
}
