package service

import (
	"math/rand/v2"
	"strings"
)

// Phrases a pull request author leaves to ask for another round of review.
const (
	BoringTriggerPhrase = "I have made the requested changes; please review again"
	FunTriggerPhrase    = "I didn't expect the Spanish Inquisition"
)

const changesRequestedTag = "changes-requested"

const changesRequestedMessage = "<!-- " + changesRequestedTag + " -->\n" +
	"A core developer has asked for changes to this pull request before it can be merged. " +
	"Please address them, along with any other requests left in reviews by core developers.\n\n" +
	"Once the changes are in, leave a comment on this pull request containing the phrase " +
	"`" + BoringTriggerPhrase + "`. " +
	"I will then let the core developers who reviewed it know that it is ready for another look.\n" +
	"<!-- /" + changesRequestedTag + " -->\n"

const coreDevChangesRequestedMessage = "<!-- " + changesRequestedTag + " -->\n" +
	"When the requested changes are done, leave the comment: `" + BoringTriggerPhrase + "`.\n" +
	"<!-- /" + changesRequestedTag + " -->\n"

var easterEggs = []string{
	"And if you don't make the requested changes, you will be poked with soft cushions!\n",
	"And if you don't make the requested changes, you will be put in the comfy chair!\n",
}

const (
	boringThanks = "Thanks for making the requested changes!"
	funThanks    = "Nobody expects the Spanish Inquisition!"
)

const easterEggChance = 0.1

// EasterEggFunc returns the footer appended to a changes-requested comment, usually empty.
type EasterEggFunc func() string

func randomEasterEgg() string {
	if rand.Float64() >= easterEggChance {
		return ""
	}
	return easterEggs[rand.IntN(len(easterEggs))]
}

func changesRequestedComment(authorIsCore bool, easterEgg string) string {
	body := changesRequestedMessage
	if authorIsCore {
		body = coreDevChangesRequestedMessage
	}
	if easterEgg != "" {
		body += "\n" + easterEgg
	}
	return body
}

// triggerPhrase reports whether body asks for re-review and whether it used the fun phrase.
func triggerPhrase(body string) (triggered, fun bool) {
	lower := strings.ToLower(body)
	fun = strings.Contains(lower, strings.ToLower(FunTriggerPhrase))
	triggered = fun || strings.Contains(lower, strings.ToLower(BoringTriggerPhrase))
	return triggered, fun
}

func mentions(usernames []string) string {
	at := make([]string, 0, len(usernames))
	for _, u := range usernames {
		at = append(at, "@"+u)
	}
	return strings.Join(at, ", ")
}

func acknowledgementComment(fun bool, reviewers []string) string {
	greeting := boringThanks
	if fun {
		greeting = funThanks
	}
	if len(reviewers) == 0 {
		return greeting + "\n"
	}
	return greeting + "\n\n" + mentions(reviewers) + ": please review the changes made to this pull request.\n"
}

func newCommitComment(reviewers []string) string {
	body := "New commits were pushed after this pull request was approved, so it needs another core review."
	if len(reviewers) == 0 {
		return body + "\n"
	}
	return body + "\n\n" + mentions(reviewers) + ": please take another look.\n"
}
