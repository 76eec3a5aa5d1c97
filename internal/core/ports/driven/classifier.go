package driven

// LanguageClassifier is a cheap local statistical classifier.
// It is synchronous and safe for high-volume call sites.
type LanguageClassifier interface {
	// Classify guesses the language of text. It returns the guessed
	// code and a probability in [0, 1]. An empty code means the
	// classifier could not produce a guess at all.
	Classify(text string) (code string, confidence float64)
}
