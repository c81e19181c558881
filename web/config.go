package web

// Config is the web shell configuration.
type Config struct {
	// Address to listen on (e.g., ":8501")
	ListenAddr string

	// Model is shown in the page footer. Empty hides it.
	Model string
}
