package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrek-backend/catalog"
	"fintrek-backend/models"
)

// DefaultTotalLessons is used for progress rows while the catalog is empty.
const DefaultTotalLessons = 45

// Gamification owns points, streaks, levels and achievements.
type Gamification struct {
	DB       *gorm.DB
	Catalog  catalog.Catalog
	Notifier *Notifier
	Now      func() time.Time
}

func (g *Gamification) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}

// Provision creates the zeroed points and progress rows of a new user.
func (g *Gamification) Provision(ctx context.Context, tx *gorm.DB, userID string) error {
	if err := tx.WithContext(ctx).Create(&models.Points{UserID: userID}).Error; err != nil {
		return fmt.Errorf("create points: %w", err)
	}
	progress := models.Progress{
		UserID:       userID,
		TotalLessons: DefaultTotalLessons,
		CurrentLevel: Levels[0].Name,
	}
	if err := tx.WithContext(ctx).Create(&progress).Error; err != nil {
		return fmt.Errorf("create progress: %w", err)
	}
	return nil
}

// TotalLessons is the catalog lesson count, falling back to DefaultTotalLessons.
func (g *Gamification) TotalLessons(ctx context.Context) (int, error) {
	if g.Catalog == nil {
		return DefaultTotalLessons, nil
	}
	total, err := catalog.TotalLessons(ctx, g.Catalog)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return DefaultTotalLessons, nil
	}
	return total, nil
}

func ensurePoints(ctx context.Context, db *gorm.DB, userID string) (models.Points, error) {
	var p models.Points
	err := db.WithContext(ctx).
		Where(models.Points{UserID: userID}).
		Attrs(models.Points{}).
		FirstOrCreate(&p).Error
	return p, err
}

func ensureProgress(ctx context.Context, db *gorm.DB, userID string, totalLessons int) (models.Progress, error) {
	var p models.Progress
	err := db.WithContext(ctx).
		Where(models.Progress{UserID: userID}).
		Attrs(models.Progress{TotalLessons: totalLessons, CurrentLevel: Levels[0].Name}).
		FirstOrCreate(&p).Error
	return p, err
}

// EnsurePoints returns the user's points row, creating an empty one when missing.
func (g *Gamification) EnsurePoints(ctx context.Context, userID string) (models.Points, error) {
	return ensurePoints(ctx, g.DB, userID)
}

// EnsureProgress returns the user's progress row with the lesson total kept in
// step with the catalog.
func (g *Gamification) EnsureProgress(ctx context.Context, userID string) (models.Progress, error) {
	total, err := g.TotalLessons(ctx)
	if err != nil {
		return models.Progress{}, err
	}
	p, err := ensureProgress(ctx, g.DB, userID, total)
	if err != nil {
		return models.Progress{}, err
	}
	if p.TotalLessons != total {
		if err := g.DB.WithContext(ctx).Model(&p).Update("total_lessons", total).Error; err != nil {
			return models.Progress{}, err
		}
		p.TotalLessons = total
	}
	return p, nil
}

// Award is one scoring event.
type Award struct {
	UserID          string
	Points          int
	Activity        string // logged when Points > 0
	ActivityType    string
	LessonCompleted bool
}

type AwardResult struct {
	Points          models.Points
	Progress        models.Progress
	NewAchievements []models.Achievement
}

// Apply runs within inside a transaction and then records the award in the
// same transaction. An error from within aborts the award and is returned as is.
func (g *Gamification) Apply(ctx context.Context, a Award, within func(tx *gorm.DB) error) (AwardResult, error) {
	totalLessons, err := g.TotalLessons(ctx)
	if err != nil {
		return AwardResult{}, fmt.Errorf("total lessons: %w", err)
	}
	var achievements []models.Achievement
	if g.Catalog != nil {
		if achievements, err = g.Catalog.ListAchievements(ctx); err != nil {
			return AwardResult{}, fmt.Errorf("list achievements: %w", err)
		}
	}

	now := g.now()
	var res AwardResult
	err = g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if within != nil {
			if err := within(tx); err != nil {
				return err
			}
		}
		points, err := g.applyPoints(tx, a, now)
		if err != nil {
			return err
		}
		progress, err := g.applyProgress(tx, a, points.TotalPoints, totalLessons)
		if err != nil {
			return err
		}
		if a.Points > 0 && a.Activity != "" {
			activity := models.UserActivity{UserID: a.UserID, Activity: a.Activity, Points: a.Points, ActivityType: a.ActivityType}
			if err := tx.Create(&activity).Error; err != nil {
				return fmt.Errorf("log activity: %w", err)
			}
		}
		earned, err := awardAchievements(tx, a.UserID, achievements, points, progress, now)
		if err != nil {
			return err
		}
		res = AwardResult{Points: points, Progress: progress, NewAchievements: earned}
		return nil
	})
	if err != nil {
		return AwardResult{}, err
	}

	if g.Notifier != nil {
		for _, ach := range res.NewAchievements {
			if err := g.Notifier.Notify(ctx, a.UserID, fmt.Sprintf("Achievement unlocked: %s", ach.Title)); err != nil {
				log.Printf("gamification: notify achievement %s: %v", ach.ID, err)
			}
		}
	}
	return res, nil
}

func (g *Gamification) applyPoints(tx *gorm.DB, a Award, now time.Time) (models.Points, error) {
	points, err := ensurePoints(tx.Statement.Context, tx, a.UserID)
	if err != nil {
		return models.Points{}, fmt.Errorf("load points: %w", err)
	}
	streak := NextStreak(points.CurrentStreak, points.LastActiveOn, now)
	longest := max(points.LongestStreak, streak)
	today := utcDay(now)
	err = tx.Model(&points).Updates(map[string]any{
		"total_points":   gorm.Expr("total_points + ?", a.Points),
		"current_streak": streak,
		"longest_streak": longest,
		"last_active_on": today,
		"updated_at":     now,
	}).Error
	if err != nil {
		return models.Points{}, fmt.Errorf("update points: %w", err)
	}
	if err := tx.First(&points, "id = ?", points.ID).Error; err != nil {
		return models.Points{}, fmt.Errorf("reload points: %w", err)
	}
	return points, nil
}

func (g *Gamification) applyProgress(tx *gorm.DB, a Award, totalPoints, totalLessons int) (models.Progress, error) {
	progress, err := ensureProgress(tx.Statement.Context, tx, a.UserID, totalLessons)
	if err != nil {
		return models.Progress{}, fmt.Errorf("load progress: %w", err)
	}
	level := LevelFor(totalPoints)
	updates := map[string]any{
		"current_level":       level.Current,
		"next_level_progress": level.Progress,
		"total_lessons":       totalLessons,
	}
	if a.LessonCompleted {
		updates["completed_lessons"] = gorm.Expr("completed_lessons + ?", 1)
	}
	if err := tx.Model(&progress).Updates(updates).Error; err != nil {
		return models.Progress{}, fmt.Errorf("update progress: %w", err)
	}
	if err := tx.First(&progress, "id = ?", progress.ID).Error; err != nil {
		return models.Progress{}, fmt.Errorf("reload progress: %w", err)
	}
	return progress, nil
}

// qualifies reports whether every threshold the achievement sets is met.
// Achievements without any threshold are never awarded automatically.
func qualifies(a models.Achievement, points models.Points, progress models.Progress) bool {
	if a.PointsRequired == nil && a.StreakRequired == nil && a.LessonsRequired == nil {
		return false
	}
	if a.PointsRequired != nil && points.TotalPoints < *a.PointsRequired {
		return false
	}
	if a.StreakRequired != nil && points.CurrentStreak < *a.StreakRequired {
		return false
	}
	if a.LessonsRequired != nil && progress.CompletedLessons < *a.LessonsRequired {
		return false
	}
	return true
}

func awardAchievements(tx *gorm.DB, userID string, all []models.Achievement, points models.Points, progress models.Progress, now time.Time) ([]models.Achievement, error) {
	if len(all) == 0 {
		return nil, nil
	}
	var earnedIDs []string
	if err := tx.Model(&models.UserAchievement{}).Where("user_id = ?", userID).Pluck("achievement_id", &earnedIDs).Error; err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}
	earned := make(map[string]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = true
	}

	var fresh []models.Achievement
	for _, a := range all {
		if earned[a.ID] || !qualifies(a, points, progress) {
			continue
		}
		ua := models.UserAchievement{UserID: userID, AchievementID: a.ID, EarnedAt: now}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
		if res.Error != nil {
			return nil, fmt.Errorf("award achievement %s: %w", a.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		activity := models.UserActivity{
			UserID:       userID,
			Activity:     "Earned achievement: " + a.Title,
			ActivityType: models.ActivityAchievement,
		}
		if err := tx.Create(&activity).Error; err != nil {
			return nil, fmt.Errorf("log achievement activity: %w", err)
		}
		fresh = append(fresh, a)
	}
	return fresh, nil
}
