package service

import (
	"testing"

	"match-coach/internal/domain"
)

func TestMemoryContextStore_GetCreatesFullDefaults(t *testing.T) {
	store := NewMemoryContextStore()

	uc, err := store.Get("never-seen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if uc.UserID != "never-seen" {
		t.Fatalf("expected user id to be set, got %q", uc.UserID)
	}
	if uc.CurrentEmotion == "" || uc.RelationshipGoals == "" || uc.CommunicationStyle == "" {
		t.Fatalf("expected scalar defaults populated, got %+v", uc)
	}
	if uc.PersonalityTraits == nil || uc.SessionHistory == nil {
		t.Fatalf("expected slice fields non-nil, got %+v", uc)
	}
	prefs := uc.LearningPreferences
	if prefs.PreferredAIStyle == "" || prefs.FeedbackSensitivity == "" || prefs.DetailLevel == "" {
		t.Fatalf("expected learning preference defaults populated, got %+v", prefs)
	}
	if uc.LastActivity.IsZero() {
		t.Fatalf("expected last activity set")
	}
}

func TestMemoryContextStore_GetIsStable(t *testing.T) {
	store := NewMemoryContextStore()

	first, _ := store.Get("u1")
	emotion := domain.EmotionAnxious
	if err := store.Update("u1", domain.UserContextPatch{CurrentEmotion: &emotion}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, _ := store.Get("u1")
	if second.CurrentEmotion != domain.EmotionAnxious {
		t.Fatalf("expected updated emotion, got %q", second.CurrentEmotion)
	}
	if second.CommunicationStyle != first.CommunicationStyle {
		t.Fatalf("expected untouched fields to survive the merge")
	}
	if !second.LastActivity.After(first.LastActivity) && !second.LastActivity.Equal(first.LastActivity) {
		t.Fatalf("expected last activity refreshed on update")
	}
}

func TestMemoryContextStore_UpdateReplacesSlicesWholesale(t *testing.T) {
	store := NewMemoryContextStore()

	if err := store.Update("u1", domain.UserContextPatch{PersonalityTraits: []string{"witty", "adventurous"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Update("u1", domain.UserContextPatch{PersonalityTraits: []string{"calm"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, _ := store.Get("u1")
	if len(uc.PersonalityTraits) != 1 || uc.PersonalityTraits[0] != "calm" {
		t.Fatalf("expected wholesale replacement, got %v", uc.PersonalityTraits)
	}
}

func TestMemoryContextStore_UpdateOnMissingUserCreatesDefaults(t *testing.T) {
	store := NewMemoryContextStore()

	style := domain.StyleDirect
	if err := store.Update("fresh", domain.UserContextPatch{CommunicationStyle: &style}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, _ := store.Get("fresh")
	if uc.CommunicationStyle != domain.StyleDirect {
		t.Fatalf("expected patched style, got %q", uc.CommunicationStyle)
	}
	if uc.CurrentEmotion == "" {
		t.Fatalf("expected defaults behind the patch, got %+v", uc)
	}
}
