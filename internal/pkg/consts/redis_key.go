package consts

const (
	PostLikeCountKey       = "post:like:count:"
	PostDislikeCountKey    = "post:dislike:count:"
	PostCommentCountKey    = "post:comment:count:"
	CommentLikeCountKey    = "comment:like:count:"
	CommentDislikeCountKey = "comment:dislike:count:"
	CommentReplyCountKey   = "comment:reply:count:"
	RatingDirtyKey         = "user:rating:dirty"
)
