package dialog

const (
	msgWelcome = "👋 Привет, %s!\n\nЯ AI-ассистент, готовый помочь вам с вопросами.\n\n" +
		"💡 <b>Важно:</b> Любое сообщение без команды автоматически обрабатывается как вопрос " +
		"коту Харитону!\n\nИспользуйте /help для получения справки."

	msgHelp = "🤖 <b>Доступные команды:</b>\n\n" +
		"/start - Начать работу с ботом\n" +
		"/help - Показать справку\n" +
		"/ask - Задать вопрос коту Харитону\n" +
		"💡 <b>Важно:</b> Любое сообщение без команды автоматически обрабатывается как вопрос " +
		"коту Харитону!"

	msgHelpAdmin = "\n\n🔧 <b>Админские команды:</b>\n/add - Добавить новый вопрос с ответом"

	msgAskPrompt = "🐱 Привет, %s!\n\n" +
		"Я готов ответить на любой вопрос, касающийся видео с котом Харитоном, где он отвечает на вопросы!\n\n" +
		"Пожалуйста, напишите ваш вопрос:"

	msgAnswerHeader = "🐱 <b>Ответ кота Харитона:</b>\n\n"

	msgStatus = "📊 <b>Информация о чате:</b>\n" +
		"Chat ID: %d\nUser ID: %d\nРоль: %s\n\nБот работает корректно!"

	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для получения справки."

	msgNotAllowed = "❌ У вас нет прав для выполнения этой команды."

	msgAddPrompt = "🔧 <b>Добавление нового вопроса</b>\n\n" +
		"Пожалуйста, введите вопрос, который хотите добавить:"

	msgAddAnswerPrompt = "✅ <b>Вопрос сохранен:</b> %s\n\n" +
		"Теперь введите ответ (да/нет, 1/0, true/false, yes/no):"

	msgAddSuccess = "✅ <b>Вопрос успешно добавлен!</b>\n\n" +
		"📝 <b>Вопрос:</b> %s\n✅ <b>Ответ:</b> %s\n🏷️ <b>Топик:</b> %s"

	msgAddFailed = "❌ Произошла ошибка при создании вопроса. Попробуйте позже."

	msgAddLost = "❌ Ошибка: вопрос не найден. Начните заново с команды /add"

	msgBadAnswerFormat = "❌ Неверный формат ответа. Пожалуйста, используйте один из вариантов:\n" +
		"• да/нет\n• 1/0\n• true/false\n• yes/no"

	msgEmptyQuestion    = "❓ Пожалуйста, напишите ваш вопрос."
	msgEmptyAddQuestion = "❓ Пожалуйста, введите вопрос."
	msgEmptyAddAnswer   = "❓ Пожалуйста, введите ответ."

	msgNoAnswer = "😔 Извините, не удалось получить ответ. Попробуйте переформулировать вопрос."

	msgQuestionError = "😔 Произошла ошибка при обработке вашего вопроса. Попробуйте позже."

	msgInternalError = "😔 Произошла ошибка при обработке вашего сообщения. Попробуйте позже."
)
