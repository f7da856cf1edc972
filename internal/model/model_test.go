package model

import "testing"

func TestDressRefDecoding(t *testing.T) {
	t.Run("bare id", func(t *testing.T) {
		var b Booking
		if err := json.Unmarshal([]byte(`{"_id":"b1","dressId":"p1"}`), &b); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if b.Dress.ID != "p1" || b.Dress.Product != nil {
			t.Errorf("dress = %+v, want id p1 without product", b.Dress)
		}
		if b.Dress.Name() != "" {
			t.Errorf("name of unpopulated ref = %q", b.Dress.Name())
		}
	})

	t.Run("populated product", func(t *testing.T) {
		var b Booking
		raw := `{"_id":"b1","dressId":{"_id":"p2","name":"Silk Saree","images":["a.jpg"]}}`
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if b.Dress.ID != "p2" || b.Dress.Name() != "Silk Saree" {
			t.Errorf("dress = %+v", b.Dress)
		}
	})

	t.Run("null", func(t *testing.T) {
		var b Booking
		if err := json.Unmarshal([]byte(`{"_id":"b1","dressId":null}`), &b); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if b.Dress.ID != "" {
			t.Errorf("dress id = %q, want empty", b.Dress.ID)
		}
	})

	t.Run("marshals as id", func(t *testing.T) {
		out, err := json.Marshal(DressRef{ID: "p3", Product: &Product{ID: "p3", Name: "Gown"}})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != `"p3"` {
			t.Errorf("marshal = %s, want \"p3\"", out)
		}
	})
}

func TestProductReferencesDecoding(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantOwner string
		wantCats  []string
	}{
		{"populated", `{"_id":"p1","Owner":{"_id":"m1","name":"Asha"},"categories":[{"_id":"c1","name":"Sarees"}]}`, "m1", []string{"c1"}},
		{"bare ids", `{"_id":"p2","Owner":"m2","category":"c2","categories":["c2","c3"]}`, "m2", []string{"c2", "c3"}},
		{"legacy category id", `{"_id":"p3","category":"c4","categories":[]}`, "", []string{"c4"}},
		{"null owner", `{"_id":"p4","Owner":null,"categories":null}`, "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			owner := ""
			if p.Owner != nil {
				owner = p.Owner.ID
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			ids := p.CategoryIDs()
			if len(ids) != len(tt.wantCats) {
				t.Fatalf("CategoryIDs = %v, want %v", ids, tt.wantCats)
			}
			for i := range ids {
				if ids[i] != tt.wantCats[i] {
					t.Errorf("CategoryIDs = %v, want %v", ids, tt.wantCats)
				}
			}
		})
	}

	var m Merchant
	if err := json.Unmarshal([]byte(`{"_id":"m9","name":"Ravi","mobilenumber":9876543210}`), &m); err != nil {
		t.Fatalf("unmarshal merchant: %v", err)
	}
	if m.Name != "Ravi" || m.MobileNumber == nil || *m.MobileNumber != 9876543210 {
		t.Errorf("merchant = %+v", m)
	}
}

func TestCategoryIDsFallback(t *testing.T) {
	p := Product{
		Categories: []*Category{nil, {Name: "no id"}},
		Category:   &Category{ID: "legacy"},
	}
	ids := p.CategoryIDs()
	if len(ids) != 1 || ids[0] != "legacy" {
		t.Errorf("CategoryIDs = %v, want [legacy]", ids)
	}

	p.Categories = []*Category{{ID: "c1"}, {ID: "c2"}}
	ids = p.CategoryIDs()
	if len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Errorf("CategoryIDs = %v, want [c1 c2]", ids)
	}
}

func TestEnumsValid(t *testing.T) {
	if !SizeFreeSize.Valid() || Size("XXXL").Valid() {
		t.Error("size validation mismatch")
	}
	if !OrderReturned.Valid() || OrderStatus("Lost").Valid() {
		t.Error("order status validation mismatch")
	}
	if !PaymentRefunded.Valid() || PaymentStatus("Partial").Valid() {
		t.Error("payment status validation mismatch")
	}
	if !ConditionVeryGood.Valid() || Condition("Poor").Valid() {
		t.Error("condition validation mismatch")
	}
	if !RoleAdmin.Valid() || Role("root").Valid() {
		t.Error("role validation mismatch")
	}
}
