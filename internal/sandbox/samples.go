package sandbox

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

type reviewText struct {
	Title string
	Body  string
}

// reviewTiers is indexed by tier - 1.
var reviewTiers = [5]reviewText{
	{"Disappointed", "The app keeps crashing whenever I open my saved items. I can't recommend it until this is fixed."},
	{"Needs work", "Some good ideas here, but it is slow and I ran into several bugs during checkout."},
	{"It's okay", "Does what it says. The design could be cleaner and sync sometimes takes a while."},
	{"Really good", "I use this every day. A dark mode and widgets would make it perfect."},
	{"Love it!", "Excellent app, fast and easy to use. Thank you to the team for the constant updates!"},
}

var (
	nicknames   = []string{"happycustomer", "techreviewer", "dailyuser", "appfan42", "mobilemaria", "quietkoala"}
	territories = []string{"USA", "GBR", "CAN", "AUS", "DEU", "FRA", "JPN"}
	languages   = []string{"en_US", "en_GB", "en_CA", "en_AU", "de_DE", "fr_FR", "ja_JP"}
)

// sampleEpoch anchors generated timestamps so identical seeds produce
// identical documents.
var sampleEpoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// ReviewTier maps a star rating to its text tier: >=5, >=4, >=3, >=2, else 1.
func ReviewTier(rating int) int {
	switch {
	case rating >= 5:
		return 5
	case rating >= 4:
		return 4
	case rating >= 3:
		return 3
	case rating >= 2:
		return 2
	default:
		return 1
	}
}

// ReviewText returns the canned title and body for rating.
func ReviewText(rating int) (string, string) {
	t := reviewTiers[ReviewTier(rating)-1]
	return t.Title, t.Body
}

type sampler struct {
	r *rand.Rand
}

func newSampler(seed string) *sampler {
	h := fnv.New64a()
	h.Write([]byte(seed))
	sum := h.Sum64()
	return &sampler{r: rand.New(rand.NewPCG(sum, sum>>1|1))}
}

func (s *sampler) rating() int {
	return s.r.IntN(5) + 1
}

func (s *sampler) pick(pool []string) string {
	return pool[s.r.IntN(len(pool))]
}

func (s *sampler) date() time.Time {
	return sampleEpoch.Add(-time.Duration(s.r.IntN(90*24)) * time.Hour)
}

func (s *sampler) id(prefix string) string {
	return fmt.Sprintf("%s%08d", prefix, s.r.IntN(100_000_000))
}

func sampleAppStoreReview(seed string) AppStoreReview {
	s := newSampler("app_store:" + seed)
	rating := s.rating()
	title, body := ReviewText(rating)

	return AppStoreReview{
		Type: "customerReviews",
		ID:   s.id(""),
		Attributes: AppStoreReviewAttributes{
			Rating:           rating,
			Title:            title,
			Body:             body,
			ReviewerNickname: s.pick(nicknames),
			CreatedDate:      s.date().Format(time.RFC3339),
			Territory:        s.pick(territories),
		},
	}
}

func sampleGooglePlayReview(packageName string) GooglePlayReview {
	s := newSampler("google_play:" + packageName)
	rating := s.rating()
	_, body := ReviewText(rating)
	modified := s.date()

	return GooglePlayReview{
		ReviewID:   s.id("gp:"),
		AuthorName: s.pick(nicknames),
		Comments: []GooglePlayComment{{
			UserComment: &GooglePlayUserComment{
				Text:             body,
				StarRating:       rating,
				ReviewerLanguage: s.pick(languages),
				LastModified:     Timestamp{Seconds: modified.Unix()},
				AppVersionName:   fmt.Sprintf("2.%d.%d", s.r.IntN(10), s.r.IntN(10)),
			},
		}},
	}
}
