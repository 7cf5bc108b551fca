package events

import "testing"

func TestSlugForInstagramDeterministic(t *testing.T) {
	if SlugForInstagram("17851234") != SlugForInstagram("17851234") {
		t.Fatal("same media id must always yield the same slug")
	}
	if got := SlugForInstagram("17851234"); got != "instagram-17851234" {
		t.Fatalf("slug = %q, want instagram-17851234", got)
	}
	if SlugForInstagram("a") == SlugForInstagram("b") {
		t.Fatal("different media ids must yield different slugs")
	}
}
