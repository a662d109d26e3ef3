package checksum

import "testing"

func TestSum_Known(t *testing.T) {
	// sha256("")
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestFields_BoundariesMatter(t *testing.T) {
	if Fields("ab", "c") == Fields("a", "bc") {
		t.Error("field boundaries should change the digest")
	}
	if Fields("x", "y") != Fields("x", "y") {
		t.Error("Fields should be deterministic")
	}
}
