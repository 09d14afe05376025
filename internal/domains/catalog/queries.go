package catalog

// Statements use $n placeholders, which both PostgreSQL and SQLite accept.
// Traversals order by id so callers see rows in creation order.
const (
	insertAuthor     = `INSERT INTO authors (name) VALUES ($1) RETURNING id`
	selectAuthorByID = `SELECT id, name FROM authors WHERE id = $1`
	selectAuthors    = `SELECT id, name FROM authors ORDER BY id`
	authorExists     = `SELECT 1 FROM authors WHERE id = $1`
	deleteAuthor     = `DELETE FROM authors WHERE id = $1`

	insertMagazine       = `INSERT INTO magazines (name, category) VALUES ($1, $2) RETURNING id`
	selectMagazineByID   = `SELECT id, name, category FROM magazines WHERE id = $1`
	selectMagazineByName = `SELECT id, name, category FROM magazines WHERE name = $1 ORDER BY id LIMIT 1`
	selectMagazines      = `SELECT id, name, category FROM magazines ORDER BY id`
	magazineExists       = `SELECT 1 FROM magazines WHERE id = $1`
	updateMagazine       = `UPDATE magazines SET name = $1, category = $2 WHERE id = $3`
	deleteMagazine       = `DELETE FROM magazines WHERE id = $1`

	insertArticle = `INSERT INTO articles (title, content, author_id, magazine_id)
		VALUES ($1, $2, $3, $4) RETURNING id`
	selectArticleByID = `SELECT id, title, content, author_id, magazine_id FROM articles WHERE id = $1`
	selectArticles    = `SELECT id, title, content, author_id, magazine_id FROM articles ORDER BY id`
	articleExists     = `SELECT 1 FROM articles WHERE id = $1`
	updateArticle     = `UPDATE articles SET content = $1 WHERE id = $2`
	deleteArticle     = `DELETE FROM articles WHERE id = $1`

	// author traversals
	selectArticlesByAuthor = `
		SELECT ar.id, ar.title, ar.content, ar.author_id, ar.magazine_id
		FROM articles ar
		JOIN authors a ON a.id = ar.author_id
		WHERE a.id = $1
		ORDER BY ar.id`
	selectMagazinesByAuthor = `
		SELECT DISTINCT m.id, m.name, m.category
		FROM magazines m
		JOIN articles ar ON ar.magazine_id = m.id
		WHERE ar.author_id = $1
		ORDER BY m.id`

	// magazine traversals
	selectArticlesByMagazine = `
		SELECT ar.id, ar.title, ar.content, ar.author_id, ar.magazine_id
		FROM articles ar
		JOIN magazines m ON m.id = ar.magazine_id
		WHERE m.id = $1
		ORDER BY ar.id`
	selectTitlesByMagazine = `
		SELECT ar.title
		FROM articles ar
		JOIN magazines m ON m.id = ar.magazine_id
		WHERE m.id = $1
		ORDER BY ar.id`
	selectContributors = `
		SELECT DISTINCT a.id, a.name
		FROM authors a
		JOIN articles ar ON ar.author_id = a.id
		WHERE ar.magazine_id = $1
		ORDER BY a.id`
	selectContributingAuthors = `
		SELECT a.id, a.name
		FROM authors a
		JOIN articles ar ON ar.author_id = a.id
		WHERE ar.magazine_id = $1
		GROUP BY a.id, a.name
		HAVING COUNT(ar.id) > $2
		ORDER BY a.id`

	// article traversals, keyed by the article's own id
	selectAuthorOfArticle = `
		SELECT a.id, a.name
		FROM authors a
		JOIN articles ar ON ar.author_id = a.id
		WHERE ar.id = $1`
	selectMagazineOfArticle = `
		SELECT m.id, m.name, m.category
		FROM magazines m
		JOIN articles ar ON ar.magazine_id = m.id
		WHERE ar.id = $1`
)

// Rows as stored. They double as the row cache payload.
type authorRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type magazineRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type articleRow struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorID   int64  `json:"author_id"`
	MagazineID int64  `json:"magazine_id"`
}

func scanAuthor(s rowScanner) (authorRow, error) {
	var r authorRow
	err := s.Scan(&r.ID, &r.Name)
	return r, err
}

func scanMagazine(s rowScanner) (magazineRow, error) {
	var r magazineRow
	err := s.Scan(&r.ID, &r.Name, &r.Category)
	return r, err
}

func scanArticle(s rowScanner) (articleRow, error) {
	var r articleRow
	err := s.Scan(&r.ID, &r.Title, &r.Content, &r.AuthorID, &r.MagazineID)
	return r, err
}

func scanTitle(s rowScanner) (string, error) {
	var title string
	err := s.Scan(&title)
	return title, err
}

func scanExists(s rowScanner) (int, error) {
	var one int
	err := s.Scan(&one)
	return one, err
}
