package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/render"
	"HomeLedger/internal/config"
)

type postsCmd struct{}

func (postsCmd) Name() string {
	return "posts"
}

func (postsCmd) Description() string {
	return "Показать ленту постов, новые сверху (--offline: из локального снимка)"
}

func (postsCmd) Usage() string {
	return "posts [--offline]"
}

func (postsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("posts")
	offline := fs.Bool("offline", false, "read the local snapshot")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	var posts []model.Post
	if *offline {
		posts, err = env.Feed.LoadSnapshot(ctx)
	} else {
		posts, err = env.Feed.LoadAll(ctx)
	}
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(Out, "No posts")
		return nil
	}
	for _, p := range posts {
		if err := render.Post(Out, p); err != nil {
			return err
		}
		fmt.Fprintln(Out)
	}
	return nil
}

// createPost загружает файлы в сессию и отправляет черновик.
func createPost(ctx context.Context, cfg *config.Config, draft model.Post, paths []string) error {
	files, err := localFiles(paths)
	if err != nil {
		return err
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	p, err := env.RequirePrincipal()
	if err != nil {
		return err
	}

	session := env.Feed.NewSession()
	defer session.Close()
	if err := session.AddFiles(files...); err != nil {
		return err
	}
	created, err := env.Feed.Create(ctx, p, draft, session)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "  id:    %s\n", created.ID)
	fmt.Fprintf(Out, "  media: %d\n", len(created.MediaIDs))
	return nil
}

type postAddCmd struct{}

func (postAddCmd) Name() string {
	return "post-add"
}

func (postAddCmd) Description() string {
	return "Опубликовать update-пост с вложениями"
}

func (postAddCmd) Usage() string {
	return "post-add --desc <text> [file ...]"
}

func (postAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("post-add")
	desc := fs.String("desc", "", "")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	draft := model.Post{Description: *desc, Variant: &model.Update{}}
	return createPost(ctx, cfg, draft, fs.Args())
}

type progressAddCmd struct{}

func (progressAddCmd) Name() string {
	return "progress-add"
}

func (progressAddCmd) Description() string {
	return "Опубликовать progress-пост: навыки, ресурсы (name+owner+link), трудности, следующая цель"
}

func (progressAddCmd) Usage() string {
	return "progress-add --title <t> --desc <text> [--skills a,b] [--resource name+owner+link ...] [--challenges <text>] [--next-goal <text>] [file ...]"
}

func (progressAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("progress-add")
	title := fs.String("title", "", "")
	desc := fs.String("desc", "", "")
	skills := fs.String("skills", "", "")
	challenges := fs.String("challenges", "", "")
	next := fs.String("next-goal", "", "")
	var resources multiFlag
	fs.Var(&resources, "resource", "")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	prog := &model.Progress{
		Title:      *title,
		Skills:     model.SplitSkills(*skills),
		Resources:  parseResources(resources),
		Challenges: *challenges,
		NextGoal:   *next,
	}
	return createPost(ctx, cfg, model.Post{Description: *desc, Variant: prog}, fs.Args())
}

func parseResources(raw []string) []model.Resource {
	out := make([]model.Resource, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.ParseResource(r))
	}
	return out
}

type postEditCmd struct{}

func (postEditCmd) Name() string {
	return "post-edit"
}

func (postEditCmd) Description() string {
	return "Изменить пост: поля заменяются целиком, вложения удаляются (--remove) и добавляются"
}

func (postEditCmd) Usage() string {
	return "post-edit [--desc D] [--title T] [--skills a,b] [--resource R ...] [--challenges C] [--next-goal G] [--remove <media> ...] <postId> [file ...]"
}

func (postEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("post-edit")
	var desc, title, skills, challenges, next optString
	var resources, remove multiFlag
	fs.Var(&desc, "desc", "")
	fs.Var(&title, "title", "")
	fs.Var(&skills, "skills", "")
	fs.Var(&challenges, "challenges", "")
	fs.Var(&next, "next-goal", "")
	fs.Var(&resources, "resource", "")
	fs.Var(&remove, "remove", "")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return ErrUsage
	}
	postID := fs.Arg(0)
	files, err := localFiles(fs.Args()[1:])
	if err != nil {
		return err
	}

	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	p, err := env.RequirePrincipal()
	if err != nil {
		return err
	}

	post, session, err := env.Feed.OpenEditSession(ctx, p, postID)
	if err != nil {
		return err
	}
	defer session.Close()

	for _, name := range remove {
		if err := session.MarkExistingForDeletion(name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := session.AddFiles(files...); err != nil {
		return err
	}

	draft := post
	if desc.set {
		draft.Description = desc.value
	}
	switch v := post.Variant.(type) {
	case *model.Progress:
		prog := *v
		if title.set {
			prog.Title = title.value
		}
		if skills.set {
			prog.Skills = model.SplitSkills(skills.value)
		}
		if len(resources) > 0 {
			prog.Resources = parseResources(resources)
		}
		if challenges.set {
			prog.Challenges = challenges.value
		}
		if next.set {
			prog.NextGoal = next.value
		}
		draft.Variant = &prog
	default:
		if title.set || skills.set || challenges.set || next.set || len(resources) > 0 {
			return errors.New("update posts have no progress fields")
		}
	}

	delta := session.BuildEditDelta()
	if err := env.Feed.Update(ctx, p, postID, draft, delta); err != nil {
		return err
	}
	fmt.Fprintf(Out, "  removed: %d\n  added:   %d\n", len(delta.ToDelete), len(delta.ToAdd))
	return nil
}

type postDeleteCmd struct{}

func (postDeleteCmd) Name() string {
	return "post-delete"
}

func (postDeleteCmd) Description() string {
	return "Удалить пост"
}

func (postDeleteCmd) Usage() string {
	return "post-delete <postId>"
}

func (postDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return ErrUsage
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	p, err := env.RequirePrincipal()
	if err != nil {
		return err
	}
	return env.Feed.Delete(ctx, p, args[0])
}

type postMediaCmd struct{}

func (postMediaCmd) Name() string {
	return "post-media"
}

func (postMediaCmd) Description() string {
	return "Скачать вложение поста в файл"
}

func (postMediaCmd) Usage() string {
	return "post-media <filename> <out-path>"
}

func (postMediaCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 || args[0] == "" || args[1] == "" {
		return ErrUsage
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	ct, err := env.Client.FetchMedia(ctx, args[0], f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(args[1])
		return err
	}
	fmt.Fprintf(Out, "✓ %s saved to %s (%s, %s)\n", args[0], args[1], model.KindOfFilename(args[0]), ct)
	return nil
}

func init() {
	RegisterCmd(postsCmd{})
	RegisterCmd(postAddCmd{})
	RegisterCmd(progressAddCmd{})
	RegisterCmd(postEditCmd{})
	RegisterCmd(postDeleteCmd{})
	RegisterCmd(postMediaCmd{})
}
