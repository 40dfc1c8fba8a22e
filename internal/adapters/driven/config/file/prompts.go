package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// DefaultPromptDir is the prompt directory used when none is given.
const DefaultPromptDir = "data/prompts"

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem: `Eres 'Asistente {institution}', experto en normativa vigente. Usa SOLO la información de los fragmentos proporcionados. Si no hay evidencia suficiente, responde literalmente: 'No encontrado en normativa {institution}' y sugiere la oficina o unidad correspondiente. Cita la fuente de cada afirmación con la etiqueta del fragmento. Al final incluye SIEMPRE una sección 'Referencias' con el formato [Documento, p.xx] o [Documento, sección]. Sé conciso y transparente sobre la vigencia.`,

	driven.PromptRAGUser: `Pregunta:
{question}

Contexto (fragmentos recuperados con metadatos):
{context}

Instrucciones de respuesta:
- Responde en 1-2 párrafos claros.
- No inventes. Si no hay evidencia, abstente como se indicó.
- Al final agrega 'Referencias' con [Documento, p.xx].`,

	driven.PromptDirectSystem: `Eres un asistente {institution}, responde breve.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to data/prompts.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		promptDir = DefaultPromptDir
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Prompts

This directory contains the prompts sent to the language model.

## Files

- ` + "`rag_system.txt`" + ` - Grounded answer policy: answer only from the fragments, cite, abstain
- ` + "`rag_user.txt`" + ` - Wraps the question and the retrieved fragments
- ` + "`direct_system.txt`" + ` - System prompt used with --no-rag

## Customisation

Edit any file to customise the assistant. Changes take effect on the next
command, or after restarting the server.

## Placeholders

Prompts use named placeholders, replaced when the prompt is rendered:
- ` + "`{institution}`" + ` - the institution name (rag_system.txt, direct_system.txt)
- ` + "`{question}`" + ` - the user's question (rag_user.txt)
- ` + "`{context}`" + ` - the retrieved fragments (rag_user.txt)

Any other text, including a literal %, is sent as written.

Keep the abstention phrase and the Referencias section when editing rag_system.txt.
`
	return os.WriteFile(path, []byte(content), 0600)
}
