package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "contract.roster.header", "📢 Who wants to earn some cash?")
	message.SetString(lang, "contract.roster.open", "📝 Contract recruitment is open!")
	message.SetString(lang, "contract.roster.author", "Author: %s")
	message.SetString(lang, "contract.roster.signed_up", "✅ Signed up (%d):")
	message.SetString(lang, "contract.roster.empty", "Nobody has signed up yet")
	message.SetString(lang, "contract.roster.closes_min", "Recruitment closes in %d min %d sec")
	message.SetString(lang, "contract.roster.closes_sec", "Recruitment closes in %d sec")

	message.SetString(lang, "contract.reminder.five", "🚨 **HURRY! Recruitment closes in 5 minutes!**\n👉 %s\n🔥 **Don't miss the contract!**")
	message.SetString(lang, "contract.reminder.two", "🔥 **LAST 2 MINUTES TO SIGN UP!**\n👉 %s\n🚨 **JOIN RIGHT NOW!**")

	message.SetString(lang, "contract.closed.started", "# 🚀 Contract is under way!\n**Author:** %s\n\n**Team roster:**\n%s")
	message.SetString(lang, "contract.closed.empty", "❌ Contract cancelled - no participants")
	message.SetString(lang, "contract.closed.no_team", "❌ No participants")
	message.SetString(lang, "contract.closed.dm", "⏱️ **Recruitment for your contract has finished!**\n**Team roster:**\n%s\nCreate the contract and add the crew to run it!")
	message.SetString(lang, "contract.closed.announcement", "⛔ **Contract recruitment is closed!**\n👉 %s\n🔥 Snooze and you lose! 😉")

	message.SetString(lang, "contract.list.header", "📋 Active contract recruitments")
	message.SetString(lang, "contract.list.entry", "Contract by %s - participants: %d, time left: %d min")
	message.SetString(lang, "contract.list.empty", "ℹ️ No active contract recruitments")

	message.SetString(lang, "reply.join.added", "✅ You are signed up for the contract!")
	message.SetString(lang, "reply.join.already", "⚠️ You are already signed up for this contract")
	message.SetString(lang, "reply.join.closed", "❌ Recruitment for this contract already finished")
	message.SetString(lang, "reply.create.active", "❌ You already have an active contract!")
	message.SetString(lang, "reply.create.failed", "❌ Something went wrong while creating the contract")
	message.SetString(lang, "reply.cancel.done", "✅ Contract recruitment cancelled!")
	message.SetString(lang, "reply.close.done", "✅ Contract recruitment closed early!")
	message.SetString(lang, "reply.close.already", "⚠️ Contract recruitment already finished")
	message.SetString(lang, "reply.no_contract", "❌ You have no active contracts!")

	message.SetString(lang, "cleanup.prompt", "🧹 **Message cleanup**\nPress the button below to delete all of my messages")
	message.SetString(lang, "cleanup.result.deleted", "✅ Messages deleted: %d")
	message.SetString(lang, "cleanup.result.errors", "⚠️ Errors encountered: %d")
	message.SetString(lang, "cleanup.forbidden", "❌ I cannot send you a DM. Check your privacy settings.")
}
