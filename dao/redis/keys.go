package redis

const (
	KeyPrefix         = "gameforum:"
	KeySessionPrefix  = "session:"         // gameforum:session:{user_id}
	KeyThreadRankZSet = "thread:rank"      // member thread id, score created_at + likes*ScorePerLike
	KeyCategoryList   = "cache:categories" // JSON of the category list
)

func getRedisKey(key string) string {
	return KeyPrefix + key
}
