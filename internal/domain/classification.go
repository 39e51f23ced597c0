package domain

// DefaultSeverity is used when the classifier omits a usable severity.
const DefaultSeverity = 5

// ClassificationRequest is the input handed to the classifier.
type ClassificationRequest struct {
	Text   string
	Title  string
	Region string
	Topic  string
	Focus  string
}

// Classification is the normalised classifier verdict for one entry.
type Classification struct {
	IsRelevant        bool
	TitleOriginal     string
	SummaryOriginal   string
	TitleTranslated   string
	SummaryTranslated string
	LocationName      string
	Severity          int
}
