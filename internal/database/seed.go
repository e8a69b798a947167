package database

import (
	"fmt"

	"github.com/theocluzel/esclavedigital/internal/models"

	"gorm.io/gorm"
)

// bookChapters is the published content. Loaded once at startup, immutable
// afterwards; callers look chapters up by exact id.
var bookChapters = []models.Chapter{
	{
		ID:    1,
		Title: "Introduction",
		Content: `
        <h2>Introduction</h2>
        <p>Bienvenue dans ESCLAVE DIGITAL, un livre qui explore notre relation complexe avec la technologie moderne.</p>
        <p>Dans ce chapitre introductif, nous allons découvrir pourquoi il est crucial de comprendre et de maîtriser notre utilisation du numérique.</p>
    `,
	},
	{
		ID:    2,
		Title: "L'emprise du numérique",
		Content: `
        <h2>L'emprise du numérique</h2>
        <p>Comment les technologies numériques ont-elles pris une telle place dans nos vies ?</p>
        <p>Nous explorerons les mécanismes subtils qui nous rendent dépendants de nos appareils.</p>
    `,
	},
	{
		ID:    3,
		Title: "Reprendre le contrôle",
		Content: `
        <h2>Reprendre le contrôle</h2>
        <p>Des solutions concrètes pour retrouver son autonomie numérique.</p>
        <p>Découvrez des stratégies pratiques pour utiliser la technologie de manière plus consciente.</p>
    `,
	},
}

// SeedChapters inserts the book content if it isn't there yet. Existing rows
// are left untouched so a restart never rewrites published chapters.
func SeedChapters(db *gorm.DB) error {
	for _, ch := range bookChapters {
		var count int64
		if err := db.Model(&models.Chapter{}).Where("id = ?", ch.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check chapter %d: %w", ch.ID, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&ch).Error; err != nil {
			return fmt.Errorf("seed chapter %d: %w", ch.ID, err)
		}
	}
	return nil
}

// Chapters returns a copy of the seed data (used by the in-memory store).
func Chapters() []models.Chapter {
	out := make([]models.Chapter, len(bookChapters))
	copy(out, bookChapters)
	return out
}
