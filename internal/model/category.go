package model

import "time"

// Category represents a registered spending category. The label universe is
// open: users can register new categories at runtime, but a new category has
// no classifier weight or centroid until the next retraining cycle.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	ID          int
	IsActive    bool
}

// TrainingExample is the unit consumed by the training pipeline. CleanText
// is the normalized form of the notification the label was assigned to.
type TrainingExample struct {
	CleanText string
	Label     string
}

// FeedbackEntry is one user correction appended to the feedback log. It is
// kept distinct from the original corpus so every retrained model stays
// reproducible from its declared inputs.
type FeedbackEntry struct {
	CreatedAt         time.Time
	RawText           string
	CleanText         string
	PredictedCategory string
	CorrectedCategory string
	Confidence        float64
	ID                int64
}

// Example converts a feedback entry into a training example.
func (f FeedbackEntry) Example() TrainingExample {
	return TrainingExample{CleanText: f.CleanText, Label: f.CorrectedCategory}
}
