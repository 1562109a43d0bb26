package chat

const startText = "Книжный бот\n\n" +
	"Команды:\n" +
	"/find <название> - поиск книги по названию\n" +
	"/author <автор> - поиск книг по автору\n" +
	"/random - случайная книга\n" +
	"/help - помощь\n\n" +
	"Примеры:\n" +
	"/find Harry Potter\n" +
	"/find 1984\n" +
	"/author Stephen King\n" +
	"/author Leo Tolstoy\n" +
	"/author Толстой\n" +
	"/random"

const helpText = "Помощь\n\n" +
	"Доступные команды:\n" +
	"/find <название> - поиск книги\n" +
	"/author <автор> - поиск по автору\n" +
	"/random - случайная книга\n" +
	"/start - начать заново\n\n" +
	"Примеры:\n" +
	"/find Harry Potter\n" +
	"/find 1984\n" +
	"/author Stephen King\n" +
	"/author Leo Tolstoy\n" +
	"/author Толстой\n" +
	"/author Достоевский\n" +
	"/random\n\n" +
	"Поиск по автору работает на русском и английском."

const findUsageText = "Укажите название. Примеры:\n" +
	"/find Harry Potter\n" +
	"/find 1984\n" +
	"/find War and Peace"

const authorUsageText = "Укажите автора. Примеры:\n" +
	"/author Stephen King\n" +
	"/author Leo Tolstoy\n" +
	"/author George Orwell\n" +
	"/author Толстой\n" +
	"/author Достоевский"

const titleNotFoundFormat = "Книги по запросу '%s' не найдены.\n" +
	"Попробуйте английское название или другой запрос."

const authorNotFoundFormat = "Книги автора '%s' не найдены.\n\n" +
	"Попробуйте:\n" +
	"Английское имя (Leo Tolstoy)\n" +
	"Фамилию (Tolstoy)\n" +
	"Другого автора\n\n" +
	"Популярные авторы:\n" +
	"Stephen King\n" +
	"J.K. Rowling\n" +
	"George Orwell\n" +
	"Leo Tolstoy\n" +
	"Fyodor Dostoevsky"

const randomNotFoundText = "Не удалось найти книгу. Попробуйте:\n" +
	"/find Harry Potter\n" +
	"/author Stephen King\n" +
	"/find 1984"

const randomFooter = "\nКоманды:\n" +
	"/random - другая книга\n" +
	"/author <автор> - поиск по автору\n" +
	"/find <название> - поиск по названию"

// Interim replies sent before a lookup starts.
const (
	searchingTitleFormat  = "Ищу книгу: %s..."
	searchingAuthorFormat = "Ищу книги автора: %s..."
	pickingRandomText     = "Выбираю случайную книгу..."
)

// Replies sent when a command handler fails.
const (
	startErrorText  = "Ошибка!"
	searchErrorText = "Ошибка при поиске."
	genericError    = "Ошибка."
)
