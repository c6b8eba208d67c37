package usecase

import (
	"math"
	"regexp"
	"strings"

	"DocForge/internal/domain"
)

const wordsPerMinute = 200

var (
	nonLetters = regexp.MustCompile(`[^a-z]`)
	// silentE strips a trailing "ed", "es", or "e" after a consonant;
	// "l" is exempt so words like "simple" keep their final syllable.
	silentE     = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	vowelGroups = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// countSyllables estimates the syllables of a single word. Words of three
// letters or fewer count as one; otherwise vowel groups of at most two
// letters are counted after the silent-e strip, floored at one.
func countSyllables(word string) int {
	word = nonLetters.ReplaceAllString(strings.ToLower(word), "")
	if len(word) <= 3 {
		return 1
	}

	word = silentE.ReplaceAllString(word, "")
	count := len(vowelGroups.FindAllString(word, -1))
	if count < 1 {
		return 1
	}
	return count
}

// splitWords tokenizes on whitespace with empties removed.
func splitWords(text string) []string {
	return strings.Fields(text)
}

// splitSentences splits on sentence-terminal punctuation, dropping blanks.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// countParagraphs counts blocks separated by blank lines.
func countParagraphs(text string) int {
	count := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// fleschReadingEase computes the Flesch score clamped to [0,100] and
// rounded to the nearest integer.
func fleschReadingEase(avgWordsPerSentence, avgSyllablesPerWord float64) int {
	score := 206.835 - 1.015*avgWordsPerSentence - 84.6*avgSyllablesPerWord
	score = math.Round(score)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// gradeLabel maps the Flesch-Kincaid grade level to a coarse label.
func gradeLabel(avgWordsPerSentence, avgSyllablesPerWord float64) string {
	grade := 0.39*avgWordsPerSentence + 11.8*avgSyllablesPerWord - 15.59
	switch {
	case grade < 6:
		return "Elementary"
	case grade < 9:
		return "Middle School"
	case grade < 12:
		return "High School"
	case grade < 16:
		return "College"
	default:
		return "Graduate"
	}
}

// computeReadability derives readability metrics and text statistics in
// one pass over the tokenized document.
func computeReadability(text string) (domain.Readability, domain.TextStats) {
	words := splitWords(text)
	sentences := splitSentences(text)

	totalSyllables := 0
	for _, word := range words {
		totalSyllables += countSyllables(word)
	}

	wordCount := len(words)
	sentenceCount := len(sentences)

	// Denominators floored at 1 so empty input cannot divide by zero.
	wordDiv := wordCount
	if wordDiv < 1 {
		wordDiv = 1
	}
	sentenceDiv := sentenceCount
	if sentenceDiv < 1 {
		sentenceDiv = 1
	}

	avgWordsPerSentence := float64(wordCount) / float64(sentenceDiv)
	avgSyllablesPerWord := float64(totalSyllables) / float64(wordDiv)

	readability := domain.Readability{
		FleschScore:    fleschReadingEase(avgWordsPerSentence, avgSyllablesPerWord),
		GradeLevel:     gradeLabel(avgWordsPerSentence, avgSyllablesPerWord),
		ReadingMinutes: int(math.Ceil(float64(wordCount) / wordsPerMinute)),
	}

	stats := domain.TextStats{
		Words:      wordCount,
		Characters: len([]rune(text)),
		Sentences:  sentenceCount,
		Paragraphs: countParagraphs(text),
	}

	return readability, stats
}
