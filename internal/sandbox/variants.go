package sandbox

// App Store Connect shapes.

type AppStoreReview struct {
	Type       string                   `json:"type"`
	ID         string                   `json:"id"`
	Attributes AppStoreReviewAttributes `json:"attributes"`
}

type AppStoreReviewAttributes struct {
	Rating           int    `json:"rating"`
	Title            string `json:"title"`
	Body             string `json:"body"`
	ReviewerNickname string `json:"reviewerNickname"`
	CreatedDate      string `json:"createdDate"`
	Territory        string `json:"territory"`
}

type Links struct {
	Self  string `json:"self"`
	Next  string `json:"next,omitempty"`
	First string `json:"first,omitempty"`
}

type AppStoreReviewResponse struct {
	Type          string                           `json:"type"`
	ID            string                           `json:"id"`
	Attributes    AppStoreReviewResponseAttributes `json:"attributes"`
	Relationships *AppStoreResponseRelationships   `json:"relationships,omitempty"`
}

type AppStoreReviewResponseAttributes struct {
	ResponseBody     string `json:"responseBody"`
	LastModifiedDate string `json:"lastModifiedDate"`
	State            string `json:"state"`
}

type AppStoreResponseRelationships struct {
	Review struct {
		Data ResourceRef `json:"data"`
	} `json:"review"`
}

type ResourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Google Play Developer shapes.

type GooglePlayReview struct {
	ReviewID   string              `json:"reviewId"`
	AuthorName string              `json:"authorName"`
	Comments   []GooglePlayComment `json:"comments"`
}

type GooglePlayComment struct {
	UserComment      *GooglePlayUserComment      `json:"userComment,omitempty"`
	DeveloperComment *GooglePlayDeveloperComment `json:"developerComment,omitempty"`
}

type GooglePlayUserComment struct {
	Text             string    `json:"text"`
	StarRating       int       `json:"starRating"`
	ReviewerLanguage string    `json:"reviewerLanguage"`
	LastModified     Timestamp `json:"lastModified"`
	AppVersionName   string    `json:"appVersionName,omitempty"`
}

type GooglePlayDeveloperComment struct {
	Text         string    `json:"text"`
	LastModified Timestamp `json:"lastModified"`
}

type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int   `json:"nanos"`
}

type TokenPagination struct {
	NextPageToken string `json:"nextPageToken"`
}

type GooglePlayReplyResult struct {
	ReviewID   string    `json:"reviewId"`
	ReplyText  string    `json:"replyText"`
	LastEdited Timestamp `json:"lastEdited"`
}

// Chat completion shapes.

type ChatCompletionChoice struct {
	Index        int                `json:"index"`
	Message      ChatCompletionText `json:"message"`
	FinishReason string             `json:"finish_reason"`
}

type ChatCompletionText struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
