package parser

import (
	"bytes"
	"testing"

	"github.com/starford/bandhub/internal/models"
)

func TestParseSetlistDir(t *testing.T) {
	cases := []struct {
		dir, venue, date string
	}{
		{"The Cat's Cradle Setlist (030725)", "The Cat's Cradle", "03/07/25"},
		{"Lincoln Theatre Setlist (2025)", "Lincoln Theatre", "2025"},
		{"Random Folder", "Random Folder", UnknownDate},
		{"Pour House Setlist (june)", "Pour House Setlist (june)", UnknownDate},
	}
	for _, c := range cases {
		venue, date := ParseSetlistDir(c.dir)
		if venue != c.venue || date != c.date {
			t.Errorf("ParseSetlistDir(%q) = (%q, %q), want (%q, %q)", c.dir, venue, date, c.venue, c.date)
		}
	}
}

func TestSetlistDirName(t *testing.T) {
	if got := SetlistDirName("Kings", "03/07/25"); got != "Kings Setlist (030725)" {
		t.Errorf("dir name = %q", got)
	}
}

const sampleSetlist = "# ****The Cat's Cradle Setlist (03/07/25)****  \n" +
	"  \n" +
	"# - Travis sit-in  \n" +
	"🎺 - Horn  \n" +
	"  \n" +
	"# ****—SET 1****  \n" +
	"Cissy Strut (92)  \n" +
	"Deal  \n" +
	"Cissy Strut (92)  \n" +
	"#   \n" +
	"# ****—-SET 2****  \n" +
	"Superstition^🎺 ^ (100)  \n" +
	"**** ****  \n" +
	"empty  \n" +
	"Deal 🥁  \n" +
	"#   \n" +
	"# ****—-SET 3****  \n" +
	"# Time (120)  \n" +
	"Time (120)  \n"

func TestParseSetlist(t *testing.T) {
	sl, rep := ParseSetlist([]byte(sampleSetlist), "The Cat's Cradle Setlist (030725)")
	if sl.Venue != "The Cat's Cradle" || sl.Date != "03/07/25" {
		t.Errorf("venue/date = %q %q", sl.Venue, sl.Date)
	}

	if len(sl.Sets[0]) != 2 {
		t.Fatalf("set 1 = %+v, want 2 songs", sl.Sets[0])
	}
	if sl.Sets[0][0].Name != "Cissy Strut" || sl.Sets[0][0].BPM != 92 {
		t.Errorf("set 1[0] = %+v", sl.Sets[0][0])
	}
	if sl.Sets[0][1].Name != "Deal" || sl.Sets[0][1].BPM != 0 {
		t.Errorf("set 1[1] = %+v", sl.Sets[0][1])
	}

	if len(sl.Sets[1]) != 2 {
		t.Fatalf("set 2 = %+v, want 2 songs", sl.Sets[1])
	}
	if sl.Sets[1][0].Name != "Superstition" || sl.Sets[1][0].BPM != 100 {
		t.Errorf("set 2[0] = %+v", sl.Sets[1][0])
	}
	// Same name in another set is kept.
	if sl.Sets[1][1].Name != "Deal" {
		t.Errorf("set 2[1] = %+v", sl.Sets[1][1])
	}

	if len(sl.Sets[2]) != 1 || sl.Sets[2][0].Name != "Time" {
		t.Errorf("set 3 = %+v", sl.Sets[2])
	}

	if len(rep.Duplicates) != 1 || rep.Duplicates[0] != "Cissy Strut" {
		t.Errorf("duplicates = %v", rep.Duplicates)
	}
}

func TestParseSetlist_IgnoresSongsBeforeFirstSet(t *testing.T) {
	sl, _ := ParseSetlist([]byte("Stray (100)\n# SET 1\nKept\n"), "x")
	if sl.SongCount() != 1 || sl.Sets[0][0].Name != "Kept" {
		t.Errorf("sets = %+v", sl.Sets)
	}
}

func TestSerializeSetlist_Format(t *testing.T) {
	sl := &models.Setlist{Venue: "Kings", Date: "03/07/25"}
	sl.Sets[0] = []models.SetlistSong{{Name: "Deal", BPM: 110}, {Name: "Jam"}}
	sl.Sets[2] = []models.SetlistSong{{Name: "Time", BPM: 120}}

	want := "# ****Kings Setlist (03/07/25)****  \n" +
		"  \n" +
		"# - Travis sit-in  \n" +
		"🎺 - Horn  \n" +
		"  \n" +
		"# ****—SET 1****  \n" +
		"Deal (110)  \n" +
		"Jam  \n" +
		"#   \n" +
		"# ****—-SET 2****  \n" +
		"#   \n" +
		"# ****—-SET 3****  \n" +
		"Time (120)  \n"
	if got := string(SerializeSetlist(sl)); got != want {
		t.Errorf("serialized =\n%q\nwant\n%q", got, want)
	}
}

func TestSetlist_RoundTrip(t *testing.T) {
	sl := &models.Setlist{Venue: "Kings", Date: "03/07/25"}
	sl.Sets[0] = []models.SetlistSong{{Name: "Deal", BPM: 110}, {Name: "Jam"}}
	sl.Sets[1] = []models.SetlistSong{{Name: "Deal", BPM: 110}}
	sl.Sets[2] = []models.SetlistSong{{Name: "Time", BPM: 120}}

	out := SerializeSetlist(sl)
	back, rep := ParseSetlist(out, SetlistDirName(sl.Venue, sl.Date))
	if !rep.Clean() {
		t.Fatalf("report = %+v", rep)
	}
	if back.Venue != sl.Venue || back.Date != sl.Date {
		t.Errorf("venue/date = %q %q", back.Venue, back.Date)
	}
	for i := range sl.Sets {
		if len(back.Sets[i]) != len(sl.Sets[i]) {
			t.Fatalf("set %d = %+v", i+1, back.Sets[i])
		}
		for j, s := range sl.Sets[i] {
			if back.Sets[i][j].Name != s.Name || back.Sets[i][j].BPM != s.BPM {
				t.Errorf("set %d[%d] = %+v, want %+v", i+1, j, back.Sets[i][j], s)
			}
		}
	}
	if !bytes.Equal(SerializeSetlist(back), out) {
		t.Error("serialization not stable")
	}
}
