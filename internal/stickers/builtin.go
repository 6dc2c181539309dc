package stickers

// builtinManifest is served when the sticker directory has no manifest.
var builtinManifest = Manifest{
	Categories: []CategoryDef{
		{ID: "travel", Name: "Travel"},
		{ID: "food", Name: "Food & Drink"},
		{ID: "weather", Name: "Weather"},
		{ID: "nature", Name: "Nature"},
		{ID: "love", Name: "Hearts & Love"},
	},
	Stickers: []StickerDef{
		{ID: "airplane", Name: "Airplane", Category: "travel", Emoji: "✈️", Tags: []string{"flight", "plane", "trip"}},
		{ID: "train", Name: "Train", Category: "travel", Emoji: "🚆", Tags: []string{"rail", "journey"}},
		{ID: "suitcase", Name: "Suitcase", Category: "travel", Emoji: "🧳", Tags: []string{"luggage", "packing"}},
		{ID: "map", Name: "World map", Category: "travel", Emoji: "🗺️", Tags: []string{"route", "explore"}},
		{ID: "camera", Name: "Camera", Category: "travel", Emoji: "📷", Tags: []string{"photo", "snapshot"}},
		{ID: "passport", Name: "Passport stamp", Category: "travel", Emoji: "🛂", Tags: []string{"border", "visa"}},
		{ID: "coffee", Name: "Coffee", Category: "food", Emoji: "☕", Tags: []string{"cafe", "breakfast"}},
		{ID: "croissant", Name: "Croissant", Category: "food", Emoji: "🥐", Tags: []string{"bakery", "breakfast"}},
		{ID: "ramen", Name: "Ramen", Category: "food", Emoji: "🍜", Tags: []string{"noodles", "dinner"}},
		{ID: "wine", Name: "Wine glass", Category: "food", Emoji: "🍷", Tags: []string{"drink", "evening"}},
		{ID: "sun", Name: "Sun", Category: "weather", Emoji: "☀️", Tags: []string{"sunny", "summer"}},
		{ID: "rain", Name: "Rain cloud", Category: "weather", Emoji: "🌧️", Tags: []string{"rainy", "storm"}},
		{ID: "snowflake", Name: "Snowflake", Category: "weather", Emoji: "❄️", Tags: []string{"snow", "winter"}},
		{ID: "mountain", Name: "Mountain", Category: "nature", Emoji: "⛰️", Tags: []string{"hike", "peak"}},
		{ID: "palm-tree", Name: "Palm tree", Category: "nature", Emoji: "🌴", Tags: []string{"beach", "tropical"}},
		{ID: "wave", Name: "Wave", Category: "nature", Emoji: "🌊", Tags: []string{"sea", "ocean", "beach"}},
		{ID: "flower", Name: "Cherry blossom", Category: "nature", Emoji: "🌸", Tags: []string{"spring", "sakura"}},
		{ID: "red-heart", Name: "Red heart", Category: "love", Emoji: "❤️", Tags: []string{"love"}},
		{ID: "sparkles", Name: "Sparkles", Category: "love", Emoji: "✨", Tags: []string{"magic", "highlight"}},
		{ID: "star", Name: "Star", Category: "love", Emoji: "⭐", Tags: []string{"favorite", "highlight"}},
	},
}
