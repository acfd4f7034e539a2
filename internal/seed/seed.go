// Package seed generates the demo snapshot used on a fresh install.
package seed

import (
	"fmt"
	"time"

	"github.com/maildeck/server/internal/models"
)

var colorGradients = []string{
	"from-purple-400 to-pink-400",
	"from-blue-400 to-pink-400",
	"from-green-400 to-emerald-400",
	"from-yellow-400 to-orange-400",
	"from-red-400 to-pink-400",
	"from-indigo-400 to-purple-400",
}

var senders = []models.Participant{
	{Name: "Sarah Chen", Email: "sarah.chen@techcorp.com"},
	{Name: "Marcus Johnson", Email: "marcus@designstudio.io"},
	{Name: "Emma Rodriguez", Email: "emma.r@startup.com"},
	{Name: "James Wilson", Email: "jwilson@marketing.co"},
	{Name: "Priya Patel", Email: "priya@cloudservices.com"},
	{Name: "Alex Kim", Email: "alex.kim@freelance.dev"},
	{Name: "LinkedIn", Email: "notifications@linkedin.com"},
	{Name: "GitHub", Email: "noreply@github.com"},
	{Name: "Slack", Email: "feedback@slack.com"},
	{Name: "Netflix", Email: "info@netflix.com"},
}

type threadTemplate struct {
	subject       string
	sender        models.Participant
	snippet       string
	body          string
	accountIDs    []string
	isUnread      bool
	hasAttachment bool
	isStarred     bool
}

var threadTemplates = []threadTemplate{
	{
		subject:    "✨ Weekend Coffee Plans",
		sender:     senders[0],
		snippet:    "Hey! Want to try that new cafe downtown this Saturday? I heard they have amazing...",
		body:       "Hey! Want to try that new cafe downtown this Saturday? I heard they have amazing matcha lattes and the vibe is super cozy. Let me know if you are free around 11am! 🍵",
		accountIDs: []string{"acc_1"},
		isUnread:   true,
		isStarred:  true,
	},
	{
		subject:    "Project Deadline Update",
		sender:     senders[1],
		snippet:    "Quick update on the design sprint - we need to push the final review to next...",
		body:       "Quick update on the design sprint - we need to push the final review to next Wednesday. The client requested some additional changes to the homepage mockups. Can you have the revisions ready by Tuesday EOD?",
		accountIDs: []string{"acc_2"},
		isUnread:   true,
	},
	{
		subject:       "Re: Q4 Budget Proposal",
		sender:        senders[3],
		snippet:       "Thanks for sending over the proposal. I reviewed it with the team and we have...",
		body:          "Thanks for sending over the proposal. I reviewed it with the team and we have a few questions about the marketing spend allocation. Can we schedule a call this week to discuss?",
		accountIDs:    []string{"acc_2"},
		hasAttachment: true,
	},
	{
		subject:    "Netflix: New shows you might like",
		sender:     senders[9],
		snippet:    "Based on your viewing history, we think you will love these new releases...",
		body:       "Based on your viewing history, we think you will love these new releases coming this month. Check out our recommendations!",
		accountIDs: []string{"acc_1"},
	},
	{
		subject:    "GitHub: Pull request merged",
		sender:     senders[7],
		snippet:    "Your pull request #234 has been merged into main branch...",
		body:       "Your pull request #234 'Add email client features' has been merged into main branch by @reviewer. Great work!",
		accountIDs: []string{"acc_1", "acc_2"},
		isUnread:   true,
		isStarred:  true,
	},
	{
		subject:       "Client Meeting Notes - TechCorp",
		sender:        senders[2],
		snippet:       "Here are the notes from the client meeting with TechCorp. Key takeaways...",
		body:          "Here are the notes from the client meeting with TechCorp. Key takeaways: 1) They want to launch by end of Q1, 2) Budget approved for additional features, 3) Need weekly status updates. Action items attached.",
		accountIDs:    []string{"acc_2"},
		isUnread:      true,
		hasAttachment: true,
	},
	{
		subject:    "Lunch tomorrow?",
		sender:     senders[5],
		snippet:    "Hey! Are you free for lunch tomorrow around 12:30? There is a new ramen place...",
		body:       "Hey! Are you free for lunch tomorrow around 12:30? There is a new ramen place that opened near the office and I have been wanting to try it. Let me know!",
		accountIDs: []string{"acc_1"},
	},
	{
		subject:    "LinkedIn: You appeared in 45 searches this week",
		sender:     senders[6],
		snippet:    "Your profile is getting attention! You appeared in 45 searches this week...",
		body:       "Your profile is getting attention! You appeared in 45 searches this week. Update your profile to increase visibility.",
		accountIDs: []string{"acc_1", "acc_2"},
	},
}

// Generate builds the demo snapshot: two healthy accounts with the six
// standard folders each (plus two custom labels on the work account) and
// a set of seeded threads. A template naming several accounts yields one
// thread filed in each of those accounts' inboxes, which is what the
// unified-inbox de-duplication rule is about.
func Generate() *models.Snapshot {
	now := time.Now().UTC()

	accounts := []models.Account{
		{
			ID:            "acc_1",
			Email:         "you@personal.com",
			Name:          "Personal Account",
			Provider:      models.ProviderGmail,
			Color:         colorGradients[0],
			IsPinned:      true,
			IsInFavorites: true,
			HealthStatus:  models.HealthGood,
		},
		{
			ID:            "acc_2",
			Email:         "you@work.com",
			Name:          "Work Account",
			Provider:      models.ProviderOutlook,
			Color:         colorGradients[1],
			IsPinned:      true,
			IsInFavorites: true,
			HealthStatus:  models.HealthGood,
		},
	}

	var folders []models.Folder
	for i := range accounts {
		account := &accounts[i]
		accountFolders := []models.Folder{
			{ID: folderID(account.ID, "inbox"), AccountID: account.ID, Name: "Inbox", Path: "INBOX", Type: models.FolderInbox},
			{ID: folderID(account.ID, "sent"), AccountID: account.ID, Name: "Sent", Path: "SENT", Type: models.FolderSent},
			{ID: folderID(account.ID, "drafts"), AccountID: account.ID, Name: "Drafts", Path: "DRAFTS", Type: models.FolderDrafts},
			{ID: folderID(account.ID, "archive"), AccountID: account.ID, Name: "Archive", Path: "ARCHIVE", Type: models.FolderArchive},
			{ID: folderID(account.ID, "spam"), AccountID: account.ID, Name: "Spam", Path: "SPAM", Type: models.FolderSpam},
			{ID: folderID(account.ID, "trash"), AccountID: account.ID, Name: "Trash", Path: "TRASH", Type: models.FolderTrash},
		}
		if i == 1 {
			accountFolders = append(accountFolders,
				models.Folder{ID: folderID(account.ID, "projects"), AccountID: account.ID, Name: "Projects", Path: "Projects", Type: models.FolderCustom},
				models.Folder{ID: folderID(account.ID, "clients"), AccountID: account.ID, Name: "Clients", Path: "Clients", Type: models.FolderCustom},
			)
		}
		for _, folder := range accountFolders {
			account.FolderIDs = append(account.FolderIDs, folder.ID)
		}
		folders = append(folders, accountFolders...)
	}

	accountsByID := make(map[string]*models.Account, len(accounts))
	for i := range accounts {
		accountsByID[accounts[i].ID] = &accounts[i]
	}

	var threads []models.Thread
	var messages []models.Message
	threadCounter, messageCounter := 1, 1

	for idx, template := range threadTemplates {
		threadID := fmt.Sprintf("thread_%d", threadCounter)
		threadCounter++
		messageDate := now.Add(time.Duration(-idx) * time.Hour)

		inboxIDs := models.NewIDSet()
		var participants []models.Participant
		participants = append(participants, template.sender)
		var messageIDs []string

		for _, accountID := range template.accountIDs {
			account, ok := accountsByID[accountID]
			if !ok {
				continue
			}
			inboxIDs.Add(folderID(accountID, "inbox"))
			recipient := models.Participant{Name: account.Name, Email: account.Email}
			participants = append(participants, recipient)

			messageID := fmt.Sprintf("msg_%d", messageCounter)
			messageCounter++
			messageIDs = append(messageIDs, messageID)

			var attachments []models.Attachment
			if template.hasAttachment {
				attachments = append(attachments, models.Attachment{
					ID:        fmt.Sprintf("att_%d", messageCounter),
					Filename:  "meeting-notes.pdf",
					MimeType:  "application/pdf",
					SizeBytes: 245678,
				})
			}

			messages = append(messages, models.Message{
				ID:          messageID,
				ThreadID:    threadID,
				From:        template.sender,
				To:          []models.Participant{recipient},
				Subject:     template.subject,
				Body:        template.body,
				Date:        messageDate,
				IsRead:      !template.isUnread,
				Attachments: attachments,
			})
		}

		if inboxIDs.Len() == 0 {
			continue
		}

		threads = append(threads, models.Thread{
			ID:           threadID,
			Subject:      template.subject,
			Participants: participants,
			MessageIDs:   messageIDs,
			FolderIDs:    inboxIDs,
			IsRead:       !template.isUnread,
			IsStarred:    template.isStarred,
			LastActivity: messageDate,
			Snippet:      template.snippet,
		})
	}

	snap := &models.Snapshot{
		Accounts: accounts,
		Folders:  folders,
		Threads:  threads,
		Messages: messages,
	}
	for _, account := range accounts {
		lastSync := now
		snap.SyncStatuses = append(snap.SyncStatuses, models.SyncStatus{
			AccountID:    account.ID,
			LastSyncTime: &lastSync,
		})
	}

	refreshFolderCaches(snap)
	return snap
}

func folderID(accountID, kind string) string {
	return fmt.Sprintf("folder_%s_%s", accountID, kind)
}

// refreshFolderCaches fills in the derived thread lists and unread
// counts so the seed satisfies the cache invariant from the start.
func refreshFolderCaches(snap *models.Snapshot) {
	for i := range snap.Folders {
		folder := &snap.Folders[i]
		folder.ThreadIDs = nil
		folder.UnreadCount = 0
		for _, thread := range snap.Threads {
			if thread.FolderIDs.Has(folder.ID) {
				folder.ThreadIDs = append(folder.ThreadIDs, thread.ID)
				if !thread.IsRead {
					folder.UnreadCount++
				}
			}
		}
	}
}
