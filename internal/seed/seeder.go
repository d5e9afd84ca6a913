// Package seed fills a development database with realistic fake data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/glimpse-social/backend/internal/logger"
	"github.com/glimpse-social/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating comments...")
	if err := s.seedComments(users, posts, 400); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("Creating likes...")
	if err := s.seedLikes(users, posts, 600); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(users, 300); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating conversations...")
	if err := s.seedMessages(users, 150); err != nil {
		return fmt.Errorf("failed to seed messages: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

// seedUsers creates fake accounts. All share the password "password123"
// so developers can log in as any of them.
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:             fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Username:          fmt.Sprintf("%s%d", gofakeit.Username(), i),
			PasswordHash:      string(hash),
			Bio:               gofakeit.Sentence(8),
			Gender:            gofakeit.RandomString([]string{"male", "female", ""}),
			ProfilePictureURL: fmt.Sprintf("https://i.pravatar.cc/300?u=%d", i),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		isReel := rand.Intn(5) == 0

		post := models.Post{
			AuthorID:  author.ID,
			Caption:   gofakeit.Sentence(rand.Intn(12) + 3),
			MediaURL:  fmt.Sprintf("https://picsum.photos/seed/%d/1080", i),
			MediaType: models.MediaTypeImage,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if isReel {
			post.MediaType = models.MediaTypeVideo
			post.IsReel = true
			post.Duration = rand.Intn(55) + 5
			post.MediaURL = fmt.Sprintf("https://cdn.glimpse.test/reels/%d.mp4", i)
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]
		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: users[rand.Intn(len(users))].ID,
			Text:     gofakeit.Sentence(rand.Intn(10) + 2),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
		if err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedLikes(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]
		like := models.PostLike{
			PostID: post.ID,
			UserID: users[rand.Intn(len(users))].ID,
		}
		res := s.db.Where("post_id = ? AND user_id = ?", like.PostID, like.UserID).
			FirstOrCreate(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followee := users[rand.Intn(len(users))]
		if follower.ID == followee.ID {
			continue
		}
		follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
		res := s.db.Where("follower_id = ? AND followee_id = ?", follow.FollowerID, follow.FolloweeID).
			FirstOrCreate(&follow)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			s.db.Model(&models.User{}).Where("id = ?", followee.ID).
				UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))
			s.db.Model(&models.User{}).Where("id = ?", follower.ID).
				UpdateColumn("following_count", gorm.Expr("following_count + 1"))
		}
	}
	return nil
}

func (s *Seeder) seedMessages(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		sender := users[rand.Intn(len(users))]
		receiver := users[rand.Intn(len(users))]
		if sender.ID == receiver.ID {
			continue
		}

		a, b := models.ParticipantKey(sender.ID, receiver.ID)
		conv := models.Conversation{ParticipantAID: a, ParticipantBID: b}
		if err := s.db.Where("participant_a_id = ? AND participant_b_id = ?", a, b).
			FirstOrCreate(&conv).Error; err != nil {
			return err
		}

		msg := models.Message{
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			ReceiverID:     receiver.ID,
			Text:           gofakeit.Sentence(rand.Intn(12) + 1),
		}
		if err := s.db.Create(&msg).Error; err != nil {
			return err
		}
	}
	return nil
}
