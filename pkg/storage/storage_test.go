package storage

import (
	"encoding/json"
	"testing"
)

func TestInMemoryStore_Save(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [], "objects": []}`)

	tests := []struct {
		name     string
		defName  string
		desc     string
		data     json.RawMessage
		wantErr  bool
	}{
		{
			name:    "Valid definition",
			defName: "Test Definition",
			desc:    "A test definition",
			data:    data,
			wantErr: false,
		},
		{
			name:    "Empty name",
			defName: "",
			desc:    "Description",
			data:    data,
			wantErr: true,
		},
		{
			name:    "Empty data",
			defName: "Test",
			desc:    "Description",
			data:    json.RawMessage{},
			wantErr: true,
		},
		{
			name:    "Invalid JSON data",
			defName: "Test",
			desc:    "Description",
			data:    json.RawMessage(`{invalid json`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := store.Save(tt.defName, tt.desc, tt.data)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if id == "" {
				t.Error("Expected non-empty ID")
			}
		})
	}
}

func TestInMemoryStore_Load(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [{"uri": "task://t1"}], "objects": []}`)
	id, err := store.Save("Test Definition", "Description", data)
	if err != nil {
		t.Fatalf("Failed to save definition: %v", err)
	}

	t.Run("Load existing definition", func(t *testing.T) {
		def, err := store.Load(id)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
			return
		}

		if def.ID != id {
			t.Errorf("Expected ID %s, got %s", id, def.ID)
		}

		if def.Name != "Test Definition" {
			t.Errorf("Expected name 'Test Definition', got %s", def.Name)
		}

		if def.Description != "Description" {
			t.Errorf("Expected description 'Description', got %s", def.Description)
		}

		if string(def.Data) != string(data) {
			t.Errorf("Expected data %s, got %s", string(data), string(def.Data))
		}
	})

	t.Run("Load non-existent definition", func(t *testing.T) {
		_, err := store.Load("non-existent-id")
		if err == nil {
			t.Error("Expected error for non-existent definition")
		}
	})

	t.Run("Load with empty ID", func(t *testing.T) {
		_, err := store.Load("")
		if err == nil {
			t.Error("Expected error for empty ID")
		}
	})
}

func TestInMemoryStore_Update(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [], "objects": []}`)
	id, err := store.Save("Original Name", "Original Description", data)
	if err != nil {
		t.Fatalf("Failed to save definition: %v", err)
	}

	t.Run("Update existing definition", func(t *testing.T) {
		newData := json.RawMessage(`{"tasks": [{"uri": "task://t1"}], "objects": []}`)
		err := store.Update(id, "Updated Name", "Updated Description", newData)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
			return
		}

		def, err := store.Load(id)
		if err != nil {
			t.Fatalf("Failed to load definition: %v", err)
		}

		if def.Name != "Updated Name" {
			t.Errorf("Expected name 'Updated Name', got %s", def.Name)
		}

		if def.Description != "Updated Description" {
			t.Errorf("Expected description 'Updated Description', got %s", def.Description)
		}

		if string(def.Data) != string(newData) {
			t.Errorf("Expected updated data")
		}
	})

	t.Run("Update non-existent definition", func(t *testing.T) {
		err := store.Update("non-existent", "Name", "Desc", data)
		if err == nil {
			t.Error("Expected error for non-existent definition")
		}
	})

	t.Run("Update with empty ID", func(t *testing.T) {
		err := store.Update("", "Name", "Desc", data)
		if err == nil {
			t.Error("Expected error for empty ID")
		}
	})

	t.Run("Update with empty name", func(t *testing.T) {
		err := store.Update(id, "", "Desc", data)
		if err == nil {
			t.Error("Expected error for empty name")
		}
	})
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [], "objects": []}`)
	id, err := store.Save("Test Definition", "Description", data)
	if err != nil {
		t.Fatalf("Failed to save definition: %v", err)
	}

	t.Run("Delete existing definition", func(t *testing.T) {
		err := store.Delete(id)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
			return
		}

		_, err = store.Load(id)
		if err == nil {
			t.Error("Expected error when loading deleted definition")
		}
	})

	t.Run("Delete non-existent definition", func(t *testing.T) {
		err := store.Delete("non-existent-id")
		if err == nil {
			t.Error("Expected error for non-existent definition")
		}
	})

	t.Run("Delete with empty ID", func(t *testing.T) {
		err := store.Delete("")
		if err == nil {
			t.Error("Expected error for empty ID")
		}
	})
}

func TestInMemoryStore_List(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [], "objects": []}`)

	t.Run("Empty store", func(t *testing.T) {
		summaries := store.List()
		if len(summaries) != 0 {
			t.Errorf("Expected empty list, got %d items", len(summaries))
		}
	})

	t.Run("Store with definitions", func(t *testing.T) {
		id1, _ := store.Save("Definition 1", "Description 1", data)
		id2, _ := store.Save("Definition 2", "Description 2", data)
		id3, _ := store.Save("Definition 3", "Description 3", data)

		summaries := store.List()

		if len(summaries) != 3 {
			t.Errorf("Expected 3 definitions, got %d", len(summaries))
		}

		ids := make(map[string]bool)
		for _, summary := range summaries {
			ids[summary.ID] = true
		}

		if !ids[id1] || !ids[id2] || !ids[id3] {
			t.Error("Not all definition IDs found in list")
		}
	})
}

func TestInMemoryStore_Exists(t *testing.T) {
	store := NewInMemoryStore()

	data := json.RawMessage(`{"tasks": [], "objects": []}`)
	id, err := store.Save("Test Definition", "Description", data)
	if err != nil {
		t.Fatalf("Failed to save definition: %v", err)
	}

	t.Run("Existing definition", func(t *testing.T) {
		if !store.Exists(id) {
			t.Error("Expected definition to exist")
		}
	})

	t.Run("Non-existent definition", func(t *testing.T) {
		if store.Exists("non-existent-id") {
			t.Error("Expected definition to not exist")
		}
	})
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	store := NewInMemoryStore()
	data := json.RawMessage(`{"tasks": [], "objects": []}`)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			_, err := store.Save("Definition", "Description", data)
			if err != nil {
				t.Errorf("Failed to save definition: %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	summaries := store.List()
	if len(summaries) != 10 {
		t.Errorf("Expected 10 definitions, got %d", len(summaries))
	}
}
