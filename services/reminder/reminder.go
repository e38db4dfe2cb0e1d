package remindersvc

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
)

// Service emails each user a daily digest of their tasks due that day.
type Service struct {
	cron     *cron.Cron
	taskSvc  task.Service
	userSvc  user.Service
	emailSvc core.EmailService
	logger   core.Logger
}

func NewService(taskSvc task.Service, userSvc user.Service, emailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		cron:     cron.New(cron.WithSeconds()),
		taskSvc:  taskSvc,
		userSvc:  userSvc,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Start schedules the daily digest at conf.Reminder.At (HH:MM) and runs the cron loop.
func (svc *Service) Start() error {
	spec, err := dailySpec(core.Conf.Reminder.At)
	if err != nil {
		return err
	}
	if _, err := svc.cron.AddFunc(spec, svc.sendDigests); err != nil {
		return errors.Wrap(err, "scheduling reminder job")
	}
	svc.cron.Start()
	return nil
}

func (svc *Service) Stop() {
	ctx := svc.cron.Stop()
	<-ctx.Done()
}

func (svc *Service) sendDigests() {
	ctx := context.Background()
	tasks, err := svc.taskSvc.DueOn(ctx, time.Now().UTC())
	if err != nil {
		svc.logger.Error(fmt.Sprintf("querying due tasks: %v", err), err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	byOwner := make(map[string][]task.Task)
	for _, t := range tasks {
		if t.List == nil {
			continue
		}
		byOwner[t.List.UserID] = append(byOwner[t.List.UserID], t)
	}

	msgs := make([]*core.EmailMessage, 0, len(byOwner))
	for ownerID, owned := range byOwner {
		usr, err := svc.userSvc.GetByID(ctx, ownerID)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("loading user %s: %v", ownerID, err), err)
			continue
		}
		msgs = append(msgs, digestMessage(usr, owned))
	}
	svc.emailSvc.SendMessages(msgs...)
}

func digestMessage(usr user.User, tasks []task.Task) *core.EmailMessage {
	body := new(strings.Builder)
	fmt.Fprintf(body, "Hi %s,\n\nYou have %d task(s) due today:\n\n", usr.Name, len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(body, "- %s (%s)\n", t.Title, t.List.Name)
	}
	fmt.Fprint(body, "\nHave a productive day!\n")

	return &core.EmailMessage{
		To:          []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:     fmt.Sprintf("You have %d task(s) due today", len(tasks)),
		TextContent: body.String(),
	}
}

func dailySpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", errors.Errorf("invalid reminder time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", errors.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", errors.Errorf("invalid minute in %q", at)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
