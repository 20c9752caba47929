/*
Package broilr is a conversational cooking assistant.

It walks a user from "what do you want to cook?" through clarifying questions,
recipe generation and step-by-step narration, or lets them load and delete the
recipes they saved before. Input is free-form text or speech; the engine only
matches literal phrases.

# Concept

A Conversation owns one session and its transcript. Every utterance is
normalized and handed to a finite-state engine that interprets it according to
the current stage (choice, dish, followups, load_or_delete, delete,
start_cooking, cooking, ask_save, done). Stages that need data call the recipe
backend through the ports.RecipeBackend interface; a failed call leaves the
session exactly as it was.

# Usage

	backend := rest.New("http://localhost:5000")
	conv, err := broilr.New(backend, "julia")
	if err != nil {
		log.Fatal(err)
	}

	replies, err := conv.Submit(ctx, "cook something new")
	for _, m := range replies {
		fmt.Println(m.Text) // 🍽️ What do you want to cook?
	}

Say "clear" (or call Reset) to start a new recipe.
*/
package broilr
