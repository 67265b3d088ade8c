package redis

const (
	// KeyPrefixCategory is the prefix for admin category documents
	KeyPrefixCategory = "startpage:category:"
	// KeyAllCategories is the set of all admin category ids
	KeyAllCategories = "startpage:categories:all"
	// KeyPrefixLink is the prefix for admin bookmark documents
	KeyPrefixLink = "startpage:links:"
	// KeyAllLinks is the set of all admin bookmark ids
	KeyAllLinks = "startpage:links:all"
)

// CategoryKey returns the key for an admin category document
func CategoryKey(id string) string {
	return KeyPrefixCategory + id
}

// AllCategoriesKey returns the set key holding all admin category ids
func AllCategoriesKey() string {
	return KeyAllCategories
}

// LinkKey returns the key for an admin bookmark document
func LinkKey(id string) string {
	return KeyPrefixLink + id
}

// AllLinksKey returns the set key holding all admin bookmark ids
func AllLinksKey() string {
	return KeyAllLinks
}

// LinksByCategoryKey returns the set key holding admin bookmark ids of one category
func LinksByCategoryKey(categoryID string) string {
	return "startpage:links:bycat:" + categoryID
}

// ProfileKey returns the key for a viewer's profile document
func ProfileKey(viewerID string) string {
	return "startpage:user:" + viewerID + ":profile"
}

// UserCategoryKey returns the key for a viewer-owned category document
func UserCategoryKey(viewerID, id string) string {
	return "startpage:user:" + viewerID + ":category:" + id
}

// UserCategoriesKey returns the set key holding a viewer's category ids
func UserCategoriesKey(viewerID string) string {
	return "startpage:user:" + viewerID + ":categories"
}

// UserBookmarkKey returns the key for a viewer-owned bookmark document
func UserBookmarkKey(viewerID, id string) string {
	return "startpage:user:" + viewerID + ":bookmark:" + id
}

// UserBookmarksByCategoryKey returns the set key holding a viewer's bookmark
// ids within one category
func UserBookmarksByCategoryKey(viewerID, categoryID string) string {
	return "startpage:user:" + viewerID + ":bookmarks:bycat:" + categoryID
}

// LikeKey returns the key for a bookmark's like record
func LikeKey(bookmarkID string) string {
	return "startpage:likes:" + bookmarkID
}
