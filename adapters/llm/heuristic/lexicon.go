package heuristic

var stopWords = set(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was",
	"one", "our", "out", "has", "have", "him", "his", "how", "its", "may", "new", "now", "old",
	"see", "two", "way", "who", "did", "get", "got", "let", "say", "she", "too", "use", "with",
	"this", "that", "from", "they", "them", "their", "there", "then", "than", "were", "been",
	"being", "what", "when", "where", "which", "while", "will", "would", "could", "should",
	"about", "after", "again", "also", "because", "before", "between", "both", "each", "into",
	"just", "more", "most", "much", "other", "over", "same", "some", "such", "very", "your",
	"yours", "these", "those", "through", "under", "until", "does", "doing", "here", "only",
	"own", "off", "once", "why", "we", "us", "it", "is", "a", "an", "of", "to", "in", "on",
)

var positiveWords = set(
	"good", "great", "excellent", "amazing", "awesome", "love", "loved", "like", "liked",
	"happy", "pleased", "satisfied", "helpful", "friendly", "fast", "easy", "best", "better",
	"positive", "recommend", "fantastic", "wonderful", "perfect", "nice", "smooth", "reliable",
	"improved", "impressive", "enjoy", "enjoyed", "delighted", "efficient", "clean",
)

var negativeWords = set(
	"bad", "poor", "terrible", "awful", "hate", "hated", "slow", "difficult", "hard", "broken",
	"worse", "worst", "negative", "unhappy", "disappointed", "disappointing", "frustrating",
	"frustrated", "confusing", "expensive", "rude", "late", "problem", "problems", "issue",
	"issues", "bug", "bugs", "fail", "failed", "failure", "complaint", "unreliable", "dirty",
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
