package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewTierBoundaries(t *testing.T) {
	cases := map[int]int{
		7:  5,
		5:  5,
		4:  4,
		3:  3,
		2:  2,
		1:  1,
		0:  1,
		-2: 1,
	}
	for rating, tier := range cases {
		assert.Equal(t, tier, ReviewTier(rating), "rating %d", rating)
	}
}

func TestReviewTextMatchesTier(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		title, body := ReviewText(rating)
		assert.Equal(t, reviewTiers[rating-1].Title, title)
		assert.Equal(t, reviewTiers[rating-1].Body, body)
	}

	title, _ := ReviewText(5)
	assert.Equal(t, "Love it!", title)
	title, _ = ReviewText(1)
	assert.Equal(t, "Disappointed", title)
}

func TestSampleReviewsAreDeterministic(t *testing.T) {
	a := sampleAppStoreReview("123")
	b := sampleAppStoreReview("123")
	assert.Equal(t, a, b)

	_, body := ReviewText(a.Attributes.Rating)
	assert.Equal(t, body, a.Attributes.Body)
	assert.Contains(t, territories, a.Attributes.Territory)
	assert.Contains(t, nicknames, a.Attributes.ReviewerNickname)

	g := sampleGooglePlayReview("com.example.app")
	assert.Equal(t, g, sampleGooglePlayReview("com.example.app"))
	if assert.Len(t, g.Comments, 1) {
		c := g.Comments[0].UserComment
		assert.GreaterOrEqual(t, c.StarRating, 1)
		assert.LessOrEqual(t, c.StarRating, 5)
		_, body := ReviewText(c.StarRating)
		assert.Equal(t, body, c.Text)
	}
}
