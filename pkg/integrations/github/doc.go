// Package github fetches the tags of GitHub repositories.
//
// # Overview
//
// [TagClient] lists the tag names of a project through the REST API
// (GET /repos/{owner}/{repo}/tags), following pages of 100 tags until a
// short page or [Config.MaxPages] is reached. Tag lists are cached per
// project for [Config.CacheTTL].
//
// # Usage
//
//	client, err := github.NewTagClient(github.Config{
//	    Token: token,
//	    Cache: c,
//	})
//	if err != nil {
//	    return err
//	}
//	tags, err := client.FetchTags(ctx, "hyperium/hyper", false)
//
// # Authentication
//
// Requests carry "Authorization: Bearer <token>". Unauthenticated requests
// are limited to 60 per hour, so callers should always supply a token.
//
// # Errors
//
// A missing repository yields [integrations.ErrNotFound], a rejected token
// [integrations.ErrUnauthorized] and a payload that is not an array of
// objects with a string "name" [integrations.ErrMalformed].
package github
