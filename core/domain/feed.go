// ABOUTME: Document tree: a document holds feeds, feeds hold articles, articles hold blocks and comments
// ABOUTME: Built once per run by the parser and read by serializers and renderers

package domain

import "time"

// Document is the root of a generated digest.
type Document struct {
	Title       string
	Author      string
	Description string
	GeneratedAt time.Time

	// Feeds keeps the configured source order.
	Feeds []Feed

	// FrontPage is an optional generated summary, nil when absent.
	FrontPage []Block

	// TotalReadingTime is the sum of the feeds' totals, nil when none is set.
	TotalReadingTime *ReadingTime
}

// Feed is the output of one configured source.
type Feed struct {
	Name        string
	Description string
	URL         string
	Articles    []Article

	// TotalReadingTime is the sum of the articles' reading times, nil when none is set.
	TotalReadingTime *ReadingTime
}

// Article is a single item of a feed.
type Article struct {
	Title     string
	Published time.Time
	Source    string
	Link      string
	Author    string
	Blocks    []Block

	// Comments is nil when the source does not provide comments and empty
	// when it does but none could be retrieved.
	Comments []Comment

	ReadingTime *ReadingTime
}

// Comment is a reader comment attached to an article.
type Comment struct {
	Author string
	Body   []Block

	// Score is the net vote count.
	Score int

	// Timestamp is zero when unknown.
	Timestamp time.Time
}

// Headline is a lightweight reference to an article, used for summaries and tables of contents.
type Headline struct {
	Feed  string
	Title string
	Link  string
}

// UpdateTotal recomputes the feed's total from its articles.
func (f *Feed) UpdateTotal() {
	values := make([]*ReadingTime, 0, len(f.Articles))
	for i := range f.Articles {
		values = append(values, f.Articles[i].ReadingTime)
	}
	f.TotalReadingTime = SumReadingTimes(values...)
}

// UpdateTotal recomputes the document's total from its feeds.
func (d *Document) UpdateTotal() {
	values := make([]*ReadingTime, 0, len(d.Feeds))
	for i := range d.Feeds {
		values = append(values, d.Feeds[i].TotalReadingTime)
	}
	d.TotalReadingTime = SumReadingTimes(values...)
}

// TotalArticles counts the articles across all feeds.
func (d *Document) TotalArticles() int {
	total := 0
	for _, feed := range d.Feeds {
		total += len(feed.Articles)
	}
	return total
}

// Headlines lists every article in document order.
func (d *Document) Headlines() []Headline {
	headlines := make([]Headline, 0, d.TotalArticles())
	for _, feed := range d.Feeds {
		for _, article := range feed.Articles {
			headlines = append(headlines, Headline{
				Feed:  feed.Name,
				Title: article.Title,
				Link:  article.Link,
			})
		}
	}
	return headlines
}

// HasComments reports whether the article carries at least one comment.
func (a *Article) HasComments() bool {
	return len(a.Comments) > 0
}
