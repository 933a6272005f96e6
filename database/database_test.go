package database

import (
	"testing"

	"wavefinder/feature"
	"wavefinder/types"
)

func TestStoreAndLoadDescriptors(t *testing.T) {
	db, err := InitDatabase(":memory:")
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	infos := []types.ImageInfo{
		{Path: "/img/a.png", Format: "png", Width: 8, Height: 8, Levels: 2,
			Features: feature.Vector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}},
		{Path: "/img/b.png", Format: "png", Width: 8, Height: 8, Levels: 2,
			Features: feature.Vector{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}},
		{Path: "/img/deep.png", Format: "png", Width: 16, Height: 16, Levels: 3,
			Features: make(feature.Vector, 20)},
	}
	for _, info := range infos {
		if err := StoreImageInfo(db, info, false); err != nil {
			t.Fatalf("StoreImageInfo(%s): %v", info.Path, err)
		}
	}

	corpus, err := LoadDescriptors(db, "", 2)
	if err != nil {
		t.Fatalf("LoadDescriptors: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("got %d descriptors at depth 2, want 2", len(corpus))
	}
	if corpus[0].Identifier != "/img/a.png" || corpus[1].Identifier != "/img/b.png" {
		t.Errorf("unexpected corpus order: %s, %s", corpus[0].Identifier, corpus[1].Identifier)
	}
	for i, want := range infos[0].Features {
		if corpus[0].Vector[i] != want {
			t.Fatalf("vector element %d: got %v, want %v", i, corpus[0].Vector[i], want)
		}
	}
}

func TestCheckImageExists(t *testing.T) {
	db, err := InitDatabase(":memory:")
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	exists, _, err := CheckImageExists(db, "/img/a.png", "")
	if err != nil {
		t.Fatalf("CheckImageExists: %v", err)
	}
	if exists {
		t.Fatal("image should not exist yet")
	}

	info := types.ImageInfo{
		Path: "/img/a.png", Levels: 1, ModifiedAt: "2024-01-02T03:04:05Z",
		Features: feature.Vector{1, 2, 3, 4, 5, 6, 7, 8},
	}
	if err := StoreImageInfo(db, info, false); err != nil {
		t.Fatalf("StoreImageInfo: %v", err)
	}

	exists, modTime, err := CheckImageExists(db, "/img/a.png", "")
	if err != nil {
		t.Fatalf("CheckImageExists: %v", err)
	}
	if !exists {
		t.Fatal("image should exist")
	}
	if modTime != "2024-01-02T03:04:05Z" {
		t.Errorf("stored mtime: got %q", modTime)
	}
}

func TestStoreImageInfoForceRewrite(t *testing.T) {
	db, err := InitDatabase(":memory:")
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	first := types.ImageInfo{Path: "/img/a.png", Levels: 1, Features: feature.Vector{1, 1, 1, 1, 1, 1, 1, 1}}
	second := types.ImageInfo{Path: "/img/a.png", Levels: 1, Features: feature.Vector{9, 9, 9, 9, 9, 9, 9, 9}}

	if err := StoreImageInfo(db, first, false); err != nil {
		t.Fatalf("first store: %v", err)
	}
	if err := StoreImageInfo(db, second, false); err != nil {
		t.Fatalf("ignored store: %v", err)
	}
	corpus, err := LoadDescriptors(db, "", 1)
	if err != nil {
		t.Fatalf("LoadDescriptors: %v", err)
	}
	if len(corpus) != 1 || corpus[0].Vector[0] != 1 {
		t.Fatal("INSERT OR IGNORE should keep the first row")
	}

	if err := StoreImageInfo(db, second, true); err != nil {
		t.Fatalf("force store: %v", err)
	}
	corpus, err = LoadDescriptors(db, "", 1)
	if err != nil {
		t.Fatalf("LoadDescriptors: %v", err)
	}
	if len(corpus) != 1 || corpus[0].Vector[0] != 9 {
		t.Fatal("force rewrite should replace the row")
	}
}

func TestGetScanStats(t *testing.T) {
	db, err := InitDatabase(":memory:")
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	for i, levels := range []int{1, 1, 2} {
		info := types.ImageInfo{
			Path:     "/img/" + string(rune('a'+i)) + ".png",
			Levels:   levels,
			Features: make(feature.Vector, 2*(3*levels+1)),
		}
		if err := StoreImageInfo(db, info, false); err != nil {
			t.Fatalf("StoreImageInfo: %v", err)
		}
	}

	stats, err := GetScanStats(db, "")
	if err != nil {
		t.Fatalf("GetScanStats: %v", err)
	}
	if stats.TotalImages != 3 {
		t.Errorf("total: got %d, want 3", stats.TotalImages)
	}
	if stats.ByLevels[1] != 2 || stats.ByLevels[2] != 1 {
		t.Errorf("per-depth counts: got %v", stats.ByLevels)
	}
}
