package utils

import "testing"

func TestHashSeed(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashSeed("abc"); got != want {
		t.Errorf("HashSeed() = %v, want %v", got, want)
	}
}
