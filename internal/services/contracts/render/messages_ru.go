package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Russian

	message.SetString(lang, "contract.roster.header", "📢 Кто хочет подзаработать?")
	message.SetString(lang, "contract.roster.open", "📝 Идет запись на контракт!")
	message.SetString(lang, "contract.roster.author", "Автор: %s")
	message.SetString(lang, "contract.roster.signed_up", "✅ Записалось (%d):")
	message.SetString(lang, "contract.roster.empty", "Пока никто не записался")
	message.SetString(lang, "contract.roster.closes_min", "Запись закроется через %d мин %d сек")
	message.SetString(lang, "contract.roster.closes_sec", "Запись закроется через %d сек")

	message.SetString(lang, "contract.reminder.five", "🚨 **СРОЧНО! Запись закрывается через 5 минут!**\n👉 %s\n🔥 **Не упусти контракт!**")
	message.SetString(lang, "contract.reminder.two", "🔥 **ПОСЛЕДНИЕ 2 МИНУТЫ ЗАПИСИ!**\n👉 %s\n🚨 **УСПЕЙ ПРИСОЕДИНИТЬСЯ ПРЯМО СЕЙЧАС!**")

	message.SetString(lang, "contract.closed.started", "# 🚀 Контракт начал выполнение!\n**Автор:** %s\n\n**Состав команды:**\n%s")
	message.SetString(lang, "contract.closed.empty", "❌ Контракт отменен - нет участников")
	message.SetString(lang, "contract.closed.no_team", "❌ Участников нет")
	message.SetString(lang, "contract.closed.dm", "⏱️ **Запись на ваш контракт завершена!**\n**Состав команды:**\n%s\nСоздайте контракт и добавьте людей для выполнения!")
	message.SetString(lang, "contract.closed.announcement", "⛔ **Запись на контракт закрыта!**\n👉 %s\n🔥 Кто не успел - тот опоздал! 😉")

	message.SetString(lang, "contract.list.header", "📋 Активные записи на контракты")
	message.SetString(lang, "contract.list.entry", "Контракт от %s - участников: %d, осталось: %d мин")
	message.SetString(lang, "contract.list.empty", "ℹ️ Активных записей на контракты нет")

	message.SetString(lang, "reply.join.added", "✅ Вы записаны на контракт!")
	message.SetString(lang, "reply.join.already", "⚠️ Вы уже записаны на этот контракт")
	message.SetString(lang, "reply.join.closed", "❌ Запись на контракт уже завершена")
	message.SetString(lang, "reply.create.active", "❌ У вас уже есть активный контракт!")
	message.SetString(lang, "reply.create.failed", "❌ Произошла ошибка при создании контракта")
	message.SetString(lang, "reply.cancel.done", "✅ Запись на контракт отменена!")
	message.SetString(lang, "reply.close.done", "✅ Запись на контракт завершена досрочно!")
	message.SetString(lang, "reply.close.already", "⚠️ Запись на контракт уже завершена")
	message.SetString(lang, "reply.no_contract", "❌ У вас нет активных контрактов!")

	message.SetString(lang, "cleanup.prompt", "🧹 **Очистка сообщений**\nНажмите кнопку ниже чтобы удалить все мои сообщения")
	message.SetString(lang, "cleanup.result.deleted", "✅ Удалено сообщений: %d")
	message.SetString(lang, "cleanup.result.errors", "⚠️ Возникло ошибок: %d")
	message.SetString(lang, "cleanup.forbidden", "❌ Не могу отправить ЛС. Проверьте настройки приватности.")
}
