package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptRAGSystem is the system instruction of the grounded answer path.
	// It may use PlaceholderInstitution.
	PromptRAGSystem = "rag_system"

	// PromptRAGUser wraps the question and the retrieved context.
	// It may use PlaceholderQuestion and PlaceholderContext.
	PromptRAGUser = "rag_user"

	// PromptDirectSystem is the system prompt used when retrieval is disabled.
	// It may use PlaceholderInstitution.
	PromptDirectSystem = "direct_system"
)

// Named placeholders substituted into prompt templates. Any other text,
// including a literal %, is left as written.
const (
	PlaceholderInstitution = "{institution}"
	PlaceholderQuestion    = "{question}"
	PlaceholderContext     = "{context}"
)
