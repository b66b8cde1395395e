// models/task.go - Static task catalog
package models

// BoardSize is the number of squares on every board.
const BoardSize = 25

// Task is one entry of the fixed 25-square catalog. The catalog is
// identical for every group and is not persisted; submissions snapshot
// the text and challenge flag at creation time.
type Task struct {
	Index        int            `json:"index"`
	Text         string         `json:"text"`
	Type         SubmissionType `json:"type"`
	IsChallenge  bool           `json:"is_challenge"`
	RequiresText bool           `json:"requires_text"`
	MinWords     int            `json:"min_words"`
}

// Tasks is the board catalog, in square order.
var Tasks = [BoardSize]Task{
	{Index: 0, Text: "send a picture with you family", Type: TypePhoto},
	{Index: 1, Text: "send a video of you saying something you're thankful for in 2025 (share to group chat)", Type: TypeVideo},
	{Index: 2, Text: "cook your family a meal and record their review (share to group chat)", Type: TypeVideo},
	{Index: 3, Text: "record yourself calling a friend and telling them you love them (share to group chat)", Type: TypeVideo},
	{Index: 4, Text: "hold a plank for one full worship song - NO BREAKS (share video to group chat)", Type: TypeVideo},
	{Index: 5, Text: "record yourself giving someone a present and them opening it (share to group chat)", Type: TypeVideo},
	{Index: 6, Text: "volunteer somewhere", Type: TypePhoto},
	{Index: 7, Text: "CHALLENGE: Bake the biggest Christmas-shaped cookie (Only 3 biggest cookies can X this square)", Type: TypePhoto, IsChallenge: true},
	{Index: 8, Text: "Do a dramatic reading of Luke 2:1–20 (share video to group chat)", Type: TypeVideo},
	{Index: 9, Text: "read a book and add a summary", Type: TypeAttestation, RequiresText: true, MinWords: 100},
	{Index: 10, Text: "chug a sparkling water without burping - record whole thing or no credit (share to group chat)", Type: TypeVideo},
	{Index: 11, Text: "CHALLENGE: wrap a gift with oven mitts on - only fastest person can X (share video to group chat)", Type: TypeVideo, IsChallenge: true},
	{Index: 12, Text: "attend church :)", Type: TypeAttestation},
	{Index: 13, Text: "record yourself doing 25 push ups in a row with Christmas decor behind you \U0001F384 (share to group chat)", Type: TypeVideo},
	{Index: 14, Text: "go to a Christmas market", Type: TypePhoto},
	{Index: 15, Text: "build a Christmas tree out of objects that aren't a tree", Type: TypePhoto},
	{Index: 16, Text: "make a gingerbread house", Type: TypePhoto},
	{Index: 17, Text: "make a cup of hot cocoa for someone else and record you giving it to them (share to group chat)", Type: TypeVideo},
	{Index: 18, Text: "take a photo with Santa or a reindeer", Type: TypePhoto},
	{Index: 19, Text: "decorate a Christmas tree and photo with your favorite ornament", Type: TypePhoto},
	{Index: 20, Text: "record yourself singing a Christmas song (share to group chat)", Type: TypeVideo},
	{Index: 21, Text: "reenact the birth of Jesus using sock puppets (share video to group chat)", Type: TypeVideo},
	{Index: 22, Text: "make a snowman - upload a picture", Type: TypePhoto},
	{Index: 23, Text: "take a photo in Christmas attire (pjs, Santa hat, ugly sweater)", Type: TypePhoto},
	{Index: 24, Text: "CHALLENGE: pose with the coolest Christmas lights (Only top three coolest can X this square)", Type: TypePhoto, IsChallenge: true},
}

// TaskAt returns the catalog entry for a square index.
func TaskAt(index int) (Task, bool) {
	if index < 0 || index >= BoardSize {
		return Task{}, false
	}
	return Tasks[index], true
}
