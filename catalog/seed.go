package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fintrek-backend/models"
)

type seedLesson struct {
	Title    string
	Duration string
	Type     string
	Content  string
}

type seedModule struct {
	Module  models.LearningModule
	Lessons []seedLesson
}

type seedQuestion struct {
	Question    string
	Options     []string
	Correct     int
	Explanation string
}

type seedQuiz struct {
	Quiz      models.Quiz
	Module    string // module title, empty for standalone quizzes
	Questions []seedQuestion
}

func lessons(kind, duration string, titles ...string) []seedLesson {
	out := make([]seedLesson, 0, len(titles))
	for _, t := range titles {
		out = append(out, seedLesson{Title: t, Duration: duration, Type: kind})
	}
	return out
}

var starterModules = []seedModule{
	{
		Module: models.LearningModule{
			Title:         "Financial Fundamentals",
			Description:   "Master the basics of personal finance and money management",
			Icon:          "dollar-sign",
			Color:         "bg-gradient-primary",
			Difficulty:    "Beginner",
			EstimatedTime: "2 hours",
			Topics:        []string{"Budgeting", "Saving", "Emergency Funds", "Financial Goals"},
			OrderIndex:    1,
			IsUnlocked:    true,
		},
		Lessons: append([]seedLesson{
			{
				Title:    "Introduction to Personal Finance",
				Duration: "15 min",
				Type:     "video",
				Content: "Personal finance is the foundation of financial freedom and security.\n\n" +
					"## The Four Pillars of Personal Finance\n\n" +
					"1. **Budgeting**: Creating a plan for your money\n" +
					"2. **Saving**: Setting aside money for future needs\n" +
					"3. **Investing**: Growing your wealth through various instruments\n" +
					"4. **Protection**: Insurance and emergency planning",
			},
			{
				Title:    "Creating Your First Budget",
				Duration: "20 min",
				Type:     "interactive",
				Content: "A budget is your financial roadmap.\n\n" +
					"## The 50/30/20 Rule\n\n" +
					"- **50%** for needs (housing, utilities, groceries)\n" +
					"- **30%** for wants (entertainment, dining out)\n" +
					"- **20%** for savings and debt repayment",
			},
		}, lessons("reading", "15 min",
			"Tracking Your Spending",
			"Building an Emergency Fund",
			"Setting Financial Goals",
			"Understanding Credit",
			"Managing Debt",
			"Saving Automatically",
		)...),
	},
	{
		Module: models.LearningModule{
			Title:         "Investment Basics",
			Description:   "Learn the fundamentals of investing and building wealth",
			Icon:          "trending-up",
			Color:         "bg-gradient-success",
			Difficulty:    "Beginner",
			EstimatedTime: "3 hours",
			Topics:        []string{"Stocks", "Bonds", "ETFs", "Risk Management"},
			OrderIndex:    2,
			IsUnlocked:    true,
		},
		Lessons: lessons("reading", "15 min",
			"Why Invest?",
			"Risk and Return",
			"What Is a Stock?",
			"What Is a Bond?",
			"Mutual Funds and ETFs",
			"Index Investing",
			"Compound Interest",
			"Diversification",
			"Dollar-Cost Averaging",
			"Retirement Accounts",
			"Fees and Expenses",
			"Building Your First Portfolio",
		),
	},
	{
		Module: models.LearningModule{
			Title:         "Trading Strategies",
			Description:   "Advanced trading techniques and market analysis",
			Icon:          "pie-chart",
			Color:         "bg-gradient-secondary",
			Difficulty:    "Intermediate",
			EstimatedTime: "5 hours",
			Topics:        []string{"Technical Analysis", "Chart Patterns", "Day Trading", "Options"},
			OrderIndex:    3,
			IsUnlocked:    true,
		},
		Lessons: lessons("video", "20 min",
			"How Markets Work",
			"Order Types",
			"Reading Candlestick Charts",
			"Support and Resistance",
			"Trend Lines",
			"Moving Averages",
			"Volume Analysis",
			"Chart Patterns",
			"Momentum Indicators",
			"Position Sizing",
			"Stop Losses",
			"Day Trading Basics",
			"Swing Trading",
			"Options Fundamentals",
			"Trading Psychology",
		),
	},
	{
		Module: models.LearningModule{
			Title:         "Portfolio Management",
			Description:   "Build and manage diversified investment portfolios",
			Icon:          "briefcase",
			Color:         "bg-accent",
			Difficulty:    "Advanced",
			EstimatedTime: "4 hours",
			Topics:        []string{"Asset Allocation", "Rebalancing", "Risk Assessment", "Performance Analysis"},
			OrderIndex:    4,
			IsUnlocked:    false,
		},
		Lessons: lessons("reading", "25 min",
			"Investment Policy Statements",
			"Asset Allocation",
			"Correlation",
			"Risk Tolerance",
			"Rebalancing",
			"Tax-Efficient Investing",
			"Measuring Performance",
			"Benchmarks",
			"Behavioral Pitfalls",
			"Long-Term Planning",
		),
	},
}

var fundamentalsQuestions = []seedQuestion{
	{
		Question:    "What percentage of your income should ideally go towards savings according to the 50/30/20 rule?",
		Options:     []string{"10%", "20%", "30%", "50%"},
		Correct:     1,
		Explanation: "The 50/30/20 rule suggests allocating 20% of your income towards savings and debt repayment.",
	},
	{
		Question:    "Which of the following is considered a 'liquid' asset?",
		Options:     []string{"Real estate", "Savings account", "Retirement fund", "Collectibles"},
		Correct:     1,
		Explanation: "A savings account is highly liquid because you can easily access your money without penalties or delays.",
	},
	{
		Question:    "What is the primary purpose of an emergency fund?",
		Options:     []string{"To invest in high-risk opportunities", "To cover unexpected expenses", "To buy luxury items", "To pay regular monthly bills"},
		Correct:     1,
		Explanation: "An emergency fund is designed to cover unexpected expenses like medical bills, job loss, or major repairs.",
	},
	{
		Question:    "Which investment typically offers the highest potential returns over the long term?",
		Options:     []string{"Savings accounts", "Government bonds", "Stocks", "Certificates of deposit (CDs)"},
		Correct:     2,
		Explanation: "Historically, stocks have provided the highest long-term returns, though they also come with higher risk.",
	},
	{
		Question:    "What does 'diversification' mean in investing?",
		Options:     []string{"Putting all money in one stock", "Spreading investments across different assets", "Only investing in bonds", "Keeping all money in cash"},
		Correct:     1,
		Explanation: "Diversification means spreading your investments across different asset types to reduce overall risk.",
	},
}

var starterQuizzes = []seedQuiz{
	{
		Quiz:      models.Quiz{Title: "Daily Financial Quiz", Description: "Test your knowledge and earn points!", IsDaily: true},
		Questions: fundamentalsQuestions,
	},
	{
		Quiz:      models.Quiz{Title: "Financial Fundamentals Quiz", Description: "Check what you learned in Financial Fundamentals"},
		Module:    "Financial Fundamentals",
		Questions: fundamentalsQuestions[:3],
	},
	{
		Quiz:   models.Quiz{Title: "Investing Daily Challenge", Description: "A quick daily check on investing basics", IsDaily: true},
		Module: "Investment Basics",
		Questions: []seedQuestion{
			{
				Question:    "What is an ETF?",
				Options:     []string{"A savings account", "A fund traded on an exchange like a stock", "A type of loan", "A government bond"},
				Correct:     1,
				Explanation: "An exchange-traded fund holds a basket of assets and trades on an exchange like a single stock.",
			},
			{
				Question:    "What does compound interest earn interest on?",
				Options:     []string{"Only the original deposit", "The deposit and previously earned interest", "Only new deposits", "Nothing after the first year"},
				Correct:     1,
				Explanation: "Compound interest is earned on both the principal and the interest already added to it.",
			},
			{
				Question:    "Which usually carries more risk?",
				Options:     []string{"A government bond", "An individual stock", "A savings account", "A certificate of deposit"},
				Correct:     1,
				Explanation: "A single company's stock can swing widely in value, while the others are designed to be stable.",
			},
		},
	},
}

func threshold(v int) *int { return &v }

var starterAchievements = []models.Achievement{
	{Title: "First Steps", Description: "Complete first lesson", Type: "bronze", Icon: "zap", LessonsRequired: threshold(1)},
	{Title: "Week Warrior", Description: "7-day learning streak", Type: "silver", Icon: "star", StreakRequired: threshold(7)},
	{Title: "Rising Trader", Description: "Earn 1,000 points", Type: "silver", Icon: "award", PointsRequired: threshold(1000)},
	{Title: "Knowledge Seeker", Description: "Complete 20 lessons", Type: "gold", Icon: "crown", LessonsRequired: threshold(20)},
	{Title: "Streak Legend", Description: "30-day learning streak", Type: "gold", Icon: "star", StreakRequired: threshold(30)},
	{Title: "Finance Master", Description: "Complete all modules", Type: "diamond", Icon: "crown", LessonsRequired: threshold(45)},
}

// Seed loads the starter catalog. Rows are matched by title, so running it
// again only fills in what is missing.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moduleIDs := map[string]string{}
		for _, sm := range starterModules {
			m := sm.Module
			m.Lessons = len(sm.Lessons)
			if err := tx.Where(models.LearningModule{Title: m.Title}).Attrs(m).FirstOrCreate(&m).Error; err != nil {
				return fmt.Errorf("seed module %q: %w", m.Title, err)
			}
			moduleIDs[m.Title] = m.ID
			for i, sl := range sm.Lessons {
				l := models.Lesson{ModuleID: m.ID, OrderIndex: i + 1, Title: sl.Title, Duration: sl.Duration, Type: sl.Type, Content: sl.Content}
				if l.Content == "" {
					l.Content = fmt.Sprintf("## %s\n\nPart %d of %s.", sl.Title, i+1, m.Title)
				}
				if err := tx.Where(models.Lesson{ModuleID: m.ID, Title: l.Title}).Attrs(l).FirstOrCreate(&l).Error; err != nil {
					return fmt.Errorf("seed lesson %q: %w", l.Title, err)
				}
			}
		}

		for _, sq := range starterQuizzes {
			q := sq.Quiz
			if id, ok := moduleIDs[sq.Module]; ok {
				q.ModuleID = &id
			}
			if err := tx.Where(models.Quiz{Title: q.Title}).Attrs(q).FirstOrCreate(&q).Error; err != nil {
				return fmt.Errorf("seed quiz %q: %w", q.Title, err)
			}
			for i, question := range sq.Questions {
				row := models.QuizQuestion{
					QuizID:        q.ID,
					Question:      question.Question,
					Options:       question.Options,
					CorrectAnswer: question.Correct,
					Explanation:   question.Explanation,
					OrderIndex:    i + 1,
				}
				if err := tx.Where(models.QuizQuestion{QuizID: q.ID, OrderIndex: i + 1}).Attrs(row).FirstOrCreate(&row).Error; err != nil {
					return fmt.Errorf("seed question %d of %q: %w", i+1, q.Title, err)
				}
			}
		}

		for _, a := range starterAchievements {
			if err := tx.Where(models.Achievement{Title: a.Title}).Attrs(a).FirstOrCreate(&a).Error; err != nil {
				return fmt.Errorf("seed achievement %q: %w", a.Title, err)
			}
		}
		return nil
	})
}
