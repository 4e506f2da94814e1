package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/voidfusion/internal/common"
	"github.com/sushihentaime/voidfusion/internal/postservice"
	"github.com/sushihentaime/voidfusion/internal/poststore"
)

// handleServiceError maps post service errors onto responses. Store details are only logged.
func (app *application) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	var storeErr *poststore.StoreError

	switch {
	case errors.Is(err, postservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, postservice.ErrDuplicateSlug):
		app.conflictErrorResponse(w, r, err)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	case errors.As(err, &storeErr) && storeErr.Retryable():
		app.serviceUnavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPublicPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.postService.ListPublicPosts(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, posts, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getPublicPostHandler(w http.ResponseWriter, r *http.Request) {
	post, err := app.postService.GetPublicPost(r.Context(), app.readSlugParam(r))
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.postService.ListPosts(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, posts, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	post, err := app.postService.GetPost(r.Context(), app.readSlugParam(r))
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input postservice.CreatePostRequest

	// Parse the request body
	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.postService.CreatePost(r.Context(), &input)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/v1/posts/"+post.Slug)

	err = app.writeJSON(w, http.StatusCreated, post, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	var input postservice.UpdatePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.postService.UpdatePost(r.Context(), app.readSlugParam(r), &input)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	err := app.postService.DeletePost(r.Context(), app.readSlugParam(r))
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
