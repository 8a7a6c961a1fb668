package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artpar/scaffold/adapters/clock"
	"github.com/artpar/scaffold/adapters/idgen"
	"github.com/artpar/scaffold/ports"
)

type mediaEntity string

func (e mediaEntity) EntityID() string { return string(e) }

func newTestMediaStore() *MediaStore {
	return NewMediaStore(idgen.NewSequential("m"), clock.NewFake(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMediaStore_AttachFetch(t *testing.T) {
	store := newTestMediaStore()
	e := mediaEntity("1")

	item, err := store.Attach(context.Background(), e, ports.MediaUpload{
		Collection: "default",
		FileName:   "a.png",
		MimeType:   "image/png",
		Content:    strings.NewReader("12345"),
	})
	if err != nil {
		t.Fatalf("Attach error: %v", err)
	}
	if item.ID != "m1" || item.Size != 5 {
		t.Errorf("item = %+v", item)
	}

	page, err := store.Fetch(context.Background(), e, "default", 1, 10)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].FileName != "a.png" {
		t.Errorf("page = %+v", page)
	}
}

func TestMediaStore_FetchFiltersByCollection(t *testing.T) {
	store := newTestMediaStore()
	e := mediaEntity("1")

	for _, c := range []string{"default", "gallery", "default"} {
		if _, err := store.Attach(context.Background(), e, ports.MediaUpload{Collection: c, FileName: c + ".png"}); err != nil {
			t.Fatalf("Attach error: %v", err)
		}
	}

	page, err := store.Fetch(context.Background(), e, "gallery", 1, 10)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if page.Total != 1 || page.Items[0].FileName != "gallery.png" {
		t.Errorf("page = %+v, want the single gallery item", page)
	}
}

func TestMediaStore_FetchPastEnd(t *testing.T) {
	store := newTestMediaStore()
	e := mediaEntity("1")
	if _, err := store.Attach(context.Background(), e, ports.MediaUpload{Collection: "default", FileName: "a.png"}); err != nil {
		t.Fatalf("Attach error: %v", err)
	}

	page, err := store.Fetch(context.Background(), e, "default", 3, 10)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 0 {
		t.Errorf("page = %+v, want empty page with total 1", page)
	}
	if page.Items == nil {
		t.Error("Items is nil, want empty slice")
	}
}

func TestMediaStore_DetachTwice(t *testing.T) {
	store := newTestMediaStore()
	e := mediaEntity("1")
	item, err := store.Attach(context.Background(), e, ports.MediaUpload{Collection: "default", FileName: "a.png"})
	if err != nil {
		t.Fatalf("Attach error: %v", err)
	}

	if err := store.Detach(context.Background(), e, item.ID); err != nil {
		t.Fatalf("first Detach error: %v", err)
	}
	if err := store.Detach(context.Background(), e, item.ID); !errors.Is(err, ports.ErrMediaNotFound) {
		t.Errorf("second Detach = %v, want ErrMediaNotFound", err)
	}
	if store.Count("1") != 0 {
		t.Errorf("Count = %d, want 0", store.Count("1"))
	}
}
