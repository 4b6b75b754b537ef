package ui

import "testing"

func TestGetTheme_UnknownFallsBack(t *testing.T) {
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(nope) = %q, want Nightfox", got)
	}
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme(t *testing.T) {
	names := ThemeNames()
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestThemeNamesReturnsCopy(t *testing.T) {
	names := ThemeNames()
	names[0] = "mutated"
	if ThemeNames()[0] == "mutated" {
		t.Fatal("ThemeNames exposes internal order slice")
	}
}

func TestStateColor(t *testing.T) {
	th := GetTheme("Slate")
	if got := th.StateColor(" Error "); got != th.StateColors["error"] {
		t.Fatalf("StateColor(error) = %q, want %q", got, th.StateColors["error"])
	}
	if got := th.StateColor("unknown"); got != th.Muted {
		t.Fatalf("StateColor(unknown) = %q, want %q", got, th.Muted)
	}
}
