package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Definition represents a stored workflow definition document together with
// its metadata. Data holds the raw JSON accepted by pkg/dsl.Load.
type Definition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DefinitionSummary represents a lightweight definition reference for listing
type DefinitionSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store defines the interface for workflow definition storage operations
type Store interface {
	// Save creates a new definition and returns its generated ID
	Save(name, description string, data json.RawMessage) (string, error)

	// Update replaces an existing definition's content
	Update(id, name, description string, data json.RawMessage) error

	// Load retrieves a definition by ID
	Load(id string) (*Definition, error)

	// Delete removes a definition by ID
	Delete(id string) error

	// List returns all definition summaries
	List() []DefinitionSummary

	// Exists checks if a definition exists
	Exists(id string) bool
}

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	definitions map[string]*Definition
	mu          sync.RWMutex
}

// NewInMemoryStore creates a new in-memory definition store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		definitions: make(map[string]*Definition),
	}
}

// Save creates a new definition and returns its ID
func (s *InMemoryStore) Save(name, description string, data json.RawMessage) (string, error) {
	if name == "" {
		return "", fmt.Errorf("definition name is required")
	}

	if len(data) == 0 {
		return "", fmt.Errorf("definition data is required")
	}

	var temp interface{}
	if err := json.Unmarshal(data, &temp); err != nil {
		return "", fmt.Errorf("invalid definition data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	now := time.Now()

	def := &Definition{
		ID:          id,
		Name:        name,
		Description: description,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.definitions[id] = def

	return id, nil
}

// Update replaces an existing definition
func (s *InMemoryStore) Update(id, name, description string, data json.RawMessage) error {
	if id == "" {
		return fmt.Errorf("definition ID is required")
	}

	if name == "" {
		return fmt.Errorf("definition name is required")
	}

	if len(data) == 0 {
		return fmt.Errorf("definition data is required")
	}

	var temp interface{}
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("invalid definition data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	def, exists := s.definitions[id]
	if !exists {
		return fmt.Errorf("definition with ID %s not found", id)
	}

	def.Name = name
	def.Description = description
	def.Data = data
	def.UpdatedAt = time.Now()

	return nil
}

// Load retrieves a definition by ID
func (s *InMemoryStore) Load(id string) (*Definition, error) {
	if id == "" {
		return nil, fmt.Errorf("definition ID is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	def, exists := s.definitions[id]
	if !exists {
		return nil, fmt.Errorf("definition with ID %s not found", id)
	}

	// Return a copy to prevent external modifications
	defCopy := &Definition{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Data:        make(json.RawMessage, len(def.Data)),
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
	}
	copy(defCopy.Data, def.Data)

	return defCopy, nil
}

// Delete removes a definition by ID
func (s *InMemoryStore) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("definition ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.definitions[id]; !exists {
		return fmt.Errorf("definition with ID %s not found", id)
	}

	delete(s.definitions, id)

	return nil
}

// List returns all definition summaries
func (s *InMemoryStore) List() []DefinitionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]DefinitionSummary, 0, len(s.definitions))

	for _, def := range s.definitions {
		summaries = append(summaries, DefinitionSummary{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			CreatedAt:   def.CreatedAt,
			UpdatedAt:   def.UpdatedAt,
		})
	}

	return summaries
}

// Exists checks if a definition exists
func (s *InMemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.definitions[id]
	return exists
}
