package domain

import "testing"

func TestLikeRecordToggle(t *testing.T) {
	rec := &LikeRecord{}

	if liked := rec.Toggle("v1"); !liked {
		t.Error("first Toggle() = false, want true")
	}
	if rec.Likes != 1 || len(rec.LikedBy) != 1 {
		t.Errorf("after like: Likes=%d LikedBy=%v", rec.Likes, rec.LikedBy)
	}

	if liked := rec.Toggle("v2"); !liked {
		t.Error("second viewer Toggle() = false, want true")
	}
	if rec.Likes != 2 {
		t.Errorf("Likes = %d, want 2", rec.Likes)
	}

	if liked := rec.Toggle("v1"); liked {
		t.Error("unlike Toggle() = true, want false")
	}
	if rec.Likes != 1 || rec.LikedBy[0] != "v2" {
		t.Errorf("after unlike: Likes=%d LikedBy=%v, want 1 [v2]", rec.Likes, rec.LikedBy)
	}
}

func TestLikeRecordCountMatchesVoters(t *testing.T) {
	// Likes must always equal len(LikedBy) after any sequence of toggles.
	rec := &LikeRecord{}
	viewers := []string{"a", "b", "c", "a", "b", "a"}
	for _, v := range viewers {
		rec.Toggle(v)
		if rec.Likes != len(rec.LikedBy) {
			t.Fatalf("Likes=%d but LikedBy has %d entries", rec.Likes, len(rec.LikedBy))
		}
	}
}

func TestLayoutCloneIsDeep(t *testing.T) {
	l := NewLayout(2)
	l.Columns[0] = []string{"a", "b"}

	c := l.Clone()
	c.Columns[0][0] = "z"

	if l.Columns[0][0] != "a" {
		t.Error("Clone() shares column storage with the original")
	}
}

func TestLayoutEqualIgnoresTimestamp(t *testing.T) {
	a := NewLayout(2)
	a.Columns[0] = []string{"x"}
	b := a.Clone()
	b.LastUpdated = b.LastUpdated.AddDate(0, 0, 1)

	if !a.Equal(b) {
		t.Error("Equal() = false for structurally identical layouts")
	}

	b.Columns[1] = []string{"y"}
	if a.Equal(b) {
		t.Error("Equal() = true for different layouts")
	}
}

func TestLayoutPosition(t *testing.T) {
	l := NewLayout(3)
	l.Columns[1] = []string{"a", "b"}

	col, idx, ok := l.Position("b")
	if !ok || col != 1 || idx != 1 {
		t.Errorf("Position(b) = (%d, %d, %v), want (1, 1, true)", col, idx, ok)
	}
	if _, _, ok := l.Position("missing"); ok {
		t.Error("Position(missing) = true, want false")
	}
}

func TestProfileSets(t *testing.T) {
	p := &Profile{
		HiddenBookmarkIDs:   []string{"h1"},
		FavoriteBookmarkIDs: []string{"f1"},
		LikedBookmarks:      []string{"l1"},
	}

	if !p.IsHidden("h1") || p.IsHidden("f1") {
		t.Error("IsHidden membership wrong")
	}
	if !p.IsFavorite("f1") || p.IsFavorite("h1") {
		t.Error("IsFavorite membership wrong")
	}
	if !p.HasLiked("l1") || p.HasLiked("h1") {
		t.Error("HasLiked membership wrong")
	}
}

func TestAddRemoveString(t *testing.T) {
	s := AddString(nil, "a")
	s = AddString(s, "a") // idempotent
	s = AddString(s, "b")
	if len(s) != 2 {
		t.Fatalf("AddString produced %v, want [a b]", s)
	}

	s = RemoveString(s, "a")
	if len(s) != 1 || s[0] != "b" {
		t.Errorf("RemoveString produced %v, want [b]", s)
	}
	s = RemoveString(s, "missing")
	if len(s) != 1 {
		t.Errorf("RemoveString(missing) changed the slice: %v", s)
	}
}
