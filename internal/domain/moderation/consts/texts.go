package consts

// Keyboard buttons
const (
	ButtonPropose       = "📝 Propose a topic"
	ButtonRequestAccess = "🔓 Request channel access"
	ButtonDone          = "✅ Done"
	ButtonCancel        = "❌ Cancel"
	ButtonAdvice        = "🧭 Need advice"
	ButtonExpress       = "💬 Want to speak out"
	ButtonPublish       = "📣 Publish"
	ButtonReject        = "🚫 Reject"
	ButtonApprove       = "✅ Approve"
	ButtonDecline       = "❌ Decline"
	ButtonUnban         = "🔓 Unban"
	ButtonJoin          = "Send request →"
	ButtonReplyAnon     = "🕶 Reply anonymously"
)

// Review card headers by classification
const (
	HeaderAdvice  = "New inquiry from a subscriber — feedback needed"
	HeaderExpress = "New topic from a subscriber"
)

// Messages to users
const (
	TextGreeting         = "Hi! I am the channel bot."
	TextMemberMenu       = "You are a member of the channel. You can propose a topic."
	TextNonMemberHint    = "To propose topics, request access to the channel. Posts and their discussion live there."
	TextNoLongerMember   = "❌ You are no longer a member of the channel. Request access first."
	TextAskTopic         = "Send your topic. You can use several messages: text, media, stickers. /cancel to abort."
	TextItemAccepted     = "Accepted. You can add more text or media.\nWhen you are finished, press «✅ Done»."
	TextItemAdded        = "Added. Press «✅ Done» when you are finished."
	TextChooseKind       = "What kind of topic is it?\nPress a button or send «1» (need advice) or «2» (want to speak out)."
	TextChooseFallback   = "Please press a button above or send «1» / «2»."
	TextSubmitted        = "✅ Your topic was sent for moderation.\nWe will let you know after the review."
	TextSubmitFailed     = "⚠️ Could not send the topic for moderation. Choose the kind again to retry or send /cancel."
	TextDraftEmpty       = "The draft is empty"
	TextNoDraft          = "There is no draft in progress. Press «📝 Propose a topic»."
	TextCancelled        = "Cancelled."
	TextPublishedNotice  = "✅ Your topic was published!"
	TextRejectedNotice   = "❌ Your topic was rejected.\nReason: %s"
	TextAnonPrompt       = "🕶 Write an anonymous comment to the topic.\nIt will be published without your name."
	TextAnonBadLink      = "This link is not valid. Open the button under the post again."
	TextAnonNotLinked    = "⚠️ The discussion for this topic is not available yet.\nYour comment is saved and will be posted as soon as it appears. You can also try again shortly."
	TextAnonPublished    = "✅ Your anonymous comment was published."
	TextAnonFailed       = "❌ Could not publish the comment. Open the link under the post and try again."
	TextBanned           = "❌ You are banned. Contact the admin to be unbanned."
	TextAlreadyMember    = "✅ You are already a member. You can propose topics."
	TextJoinLink         = "Press the button to request access to the channel:"
	TextJoinLinkFailed   = "Could not create an invite link. Try again later or contact the admin."
	TextAccessApproved   = "✅ Your access to the channel was approved."
	TextWelcomeMember    = "Welcome! Now you can propose a topic."
	TextAccessDeclined   = "❌ Your access to the channel was declined."
	TextUnbanned         = "✅ You were unbanned. Press «🔓 Request channel access» again."
	TextChatID           = "chat.id = %d"
)

// Messages in the admin chat
const (
	TextAuthorInfo         = "👤 From: @%s\nID: %d\nName: %s"
	TextRejectPrompt       = "✍️ Reply to THIS message with the rejection reason (text only)."
	TextRejectNeedText     = "Text needed. Write the reason in one message."
	TextRejectedAnnotation = "🚫 Rejected. Reason: %s"
	TextRejectRecorded     = "✅ Rejection recorded."
	TextRejectUndelivered  = "✅ Rejection recorded. (Not delivered to the author)"
	TextAuthorUnreachable  = "⚠️ Could not send the reason to the author (they may have blocked the bot)."
	TextRejectCancelled    = "Rejection cancelled. The topic is back in the queue."
	TextPublished          = "📣 Published: %s"
	TextPublishFailed      = "⚠️ Could not publish the topic. Try again."
	TextBannedRequest      = "🛑 Access request from a banned user @%s (id: %d)"
	TextAccessRequest      = "🔔 New access request from @%s (id: %d)."
	TextJoinRequest        = "📩 Join request from @%s (id: %d)"
)

// Action acknowledgements
const (
	AckNoAccess       = "No access"
	AckAlreadyHandled = "Already handled"
	AckInProgress     = "Another admin is handling it"
	AckPublished      = "Published"
	AckEnterReason    = "Enter the reason"
	AckFailed         = "Error, try again"
	AckDone           = "Done"
	AckUnknown        = "Unknown action"
)
