package question

import (
	"encoding/json"
	"fmt"
	"os"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 5

// Question is one immutable trivia question.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Bank is an ordered, read-only sequence of questions loaded once at startup.
type Bank struct {
	questions []Question
}

// NewBank validates the given questions and wraps them in a Bank.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}
	for i, q := range questions {
		if q.Text == "" {
			return nil, fmt.Errorf("question %d: empty text", i+1)
		}
		if len(q.Options) != OptionCount {
			return nil, fmt.Errorf("question %d: expected %d options, got %d", i+1, OptionCount, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct index %d out of range", i+1, q.CorrectIndex)
		}
	}

	copied := make([]Question, len(questions))
	copy(copied, questions)
	return &Bank{questions: copied}, nil
}

// LoadFile reads a JSON array of questions from disk.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return NewBank(questions)
}

// Count returns the number of questions in the bank.
func (b *Bank) Count() int {
	return len(b.questions)
}

// At returns the question at index i. Panics if i is out of range, matching
// slice semantics; callers index with the session's currentQuestionIndex
// which is bounded by Count.
func (b *Bank) At(i int) Question {
	return b.questions[i]
}

// Default returns the built-in general-knowledge bank.
func Default() *Bank {
	bank, err := NewBank(defaultQuestions)
	if err != nil {
		// The built-in set is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return bank
}

var defaultQuestions = []Question{
	{
		ID:           1,
		Text:         "What is the capital of Australia?",
		Options:      []string{"Sydney", "Canberra", "Melbourne", "Perth", "Brisbane"},
		CorrectIndex: 1,
	},
	{
		ID:           2,
		Text:         "Which is the largest ocean on Earth?",
		Options:      []string{"Atlantic", "Pacific", "Indian", "Arctic", "Southern"},
		CorrectIndex: 1,
	},
	{
		ID:           3,
		Text:         "In what year was JavaScript created?",
		Options:      []string{"1993", "1995", "1997", "1999", "2001"},
		CorrectIndex: 1,
	},
	{
		ID:           4,
		Text:         "How many planets are in the Solar System?",
		Options:      []string{"7", "8", "9", "10", "6"},
		CorrectIndex: 1,
	},
	{
		ID:           5,
		Text:         "What does HTML stand for?",
		Options:      []string{"Hyper Text Markup Language", "High Tech Modern Language", "Home Tool Markup Language", "Hyper Transfer Markup Language", "Host Type Markup Language"},
		CorrectIndex: 0,
	},
	{
		ID:           6,
		Text:         "What is the highest mountain in the world?",
		Options:      []string{"K2", "Everest", "Kilimanjaro", "Mont Blanc", "Denali"},
		CorrectIndex: 1,
	},
	{
		ID:           7,
		Text:         "What does CSS stand for?",
		Options:      []string{"Computer Style Sheets", "Creative Style Sheets", "Cascading Style Sheets", "Colorful Style Sheets", "Common Style Sheets"},
		CorrectIndex: 2,
	},
	{
		ID:           8,
		Text:         "How many bones does an adult human body have?",
		Options:      []string{"204", "205", "206", "207", "208"},
		CorrectIndex: 2,
	},
	{
		ID:           9,
		Text:         "Who invented the World Wide Web?",
		Options:      []string{"Bill Gates", "Steve Jobs", "Tim Berners-Lee", "Mark Zuckerberg", "Elon Musk"},
		CorrectIndex: 2,
	},
	{
		ID:           10,
		Text:         "What does JSON stand for?",
		Options:      []string{"JavaScript Object Notation", "Java Standard Object Notation", "JavaScript Online Notation", "Java Syntax Object Notation", "JavaScript Operator Notation"},
		CorrectIndex: 0,
	},
}
